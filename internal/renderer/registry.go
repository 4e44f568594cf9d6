package renderer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrSourceNotFound — драйвер для plugin_id не зарегистрирован.
var ErrSourceNotFound = errors.New("source not found")

// Source — драйвер источника контента.
//
// Render получает непрозрачные настройки unit и возвращает
// срендеренные байты контента.
type Source interface {
	// PluginID возвращает идентификатор плагина, который обслуживает драйвер.
	PluginID() string

	// Render генерирует контент по настройкам unit.
	Render(ctx context.Context, settings map[string]any) ([]byte, error)
}

// Registry — реестр драйверов источников по plugin_id.
// Потокобезопасен.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// DefaultRegistry создаёт реестр со стандартными драйверами.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewHTTPSource())
	r.Register(NewTextSource())
	return r
}

// Register регистрирует драйвер.
// Существующий драйвер с тем же plugin_id перезаписывается.
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.PluginID()] = s
}

// Get возвращает драйвер по plugin_id.
func (r *Registry) Get(pluginID string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.sources[pluginID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, pluginID)
	}
	return s, nil
}

// PluginIDs возвращает отсортированный список зарегистрированных plugin_id.
func (r *Registry) PluginIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
