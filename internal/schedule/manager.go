package schedule

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shaiso/Vitrine/internal/domain"
	"github.com/shaiso/Vitrine/internal/telemetry"
)

// cacheTTL — время жизни записи кэша выбора активной ротации.
const cacheTTL = time.Minute

// DefaultRotationName — имя ротации, создаваемой когда конфигурация пуста.
const DefaultRotationName = "Default"

// resolveCache — кэш последнего выбора активной ротации.
//
// Хранит ровно одну запись, ключ — минута суток "HH:MM". Кэш
// исключительно совещательный: его сброс никогда не меняет результат,
// только стоимость вычисления.
type resolveCache struct {
	key    string
	value  *domain.Rotation
	expiry time.Time
	valid  bool
}

// Manager — планировщик: владеет набором ротаций и решает, какая из
// них активна в данный момент.
//
// Все методы потокобезопасны за счёт одного грубого мьютекса.
type Manager struct {
	mu        sync.Mutex
	rotations []*domain.Rotation
	cache     resolveCache
	logger    *slog.Logger
}

// NewManager создаёт пустой Manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// NewManagerFromState создаёт Manager из персистентного документа.
func NewManagerFromState(st domain.State, logger *slog.Logger) *Manager {
	m := NewManager(logger)
	m.rotations = st.Clone().Rotations
	return m
}

// Snapshot возвращает документ текущей конфигурации (глубокая копия).
func (m *Manager) Snapshot() domain.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.State{Rotations: m.rotations}.Clone()
}

// EnsureDefault добавляет ротацию по умолчанию (весь день), если
// конфигурация пуста. Возвращает true, если ротация была добавлена.
func (m *Manager) EnsureDefault() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rotations) > 0 {
		return false
	}
	m.rotations = append(m.rotations,
		domain.NewRotation(DefaultRotationName, domain.DefaultStart, domain.DefaultEnd))
	m.invalidateLocked()
	return true
}

// ResolveActive возвращает активную в момент now ротацию или nil.
// Возвращается копия: внутреннее состояние не покидает мьютекс.
//
// Результат кэшируется на минуту с ключом "HH:MM": повторные вызовы в
// пределах той же минуты возвращают кэшированное значение (в том числе
// кэшированное "ничего не активно") без пересчёта. Некорректный
// timestamp (нулевой) — не ошибка: логируется и возвращается nil.
func (m *Manager) ResolveActive(now time.Time) *domain.Rotation {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.IsZero() {
		m.logger.Error("invalid timestamp for active rotation resolve")
		return nil
	}

	key := domain.Clock(now)
	if m.cache.valid && now.Before(m.cache.expiry) && m.cache.key == key {
		telemetry.ResolveCacheHits.Inc()
		if m.cache.value == nil {
			return nil
		}
		return m.cache.value.Clone()
	}
	telemetry.ResolveCacheMisses.Inc()

	active := m.calculateActive(key)
	m.cache = resolveCache{
		key:    key,
		value:  active,
		expiry: now.Add(cacheTTL),
		valid:  true,
	}

	telemetry.ActiveRotation.Reset()
	if active == nil {
		return nil
	}
	telemetry.ActiveRotation.WithLabelValues(active.Name).Set(1)
	return active.Clone()
}

// calculateActive выбирает активную ротацию без кэша.
// Вызывается под мьютексом.
func (m *Manager) calculateActive(clock string) *domain.Rotation {
	if len(m.rotations) == 0 {
		m.logger.Info("no rotations configured")
		return nil
	}

	// Ротация без units никогда не выбирается, даже если окно активно.
	var active []*domain.Rotation
	for _, rot := range m.rotations {
		if rot.IsActive(clock) && len(rot.Plugins) > 0 {
			active = append(active, rot)
		}
	}
	if len(active) == 0 {
		m.logger.Debug("no active rotations with units", "clock", clock)
		return nil
	}

	// Приоритеты считаем заранее: ошибка в любом из них — деградация
	// до первой подходящей ротации в исходном порядке.
	type ranked struct {
		rot  *domain.Rotation
		prio int
	}
	list := make([]ranked, 0, len(active))
	for _, rot := range active {
		p, err := rot.Priority()
		if err != nil {
			m.logger.Error("failed to rank rotations, using config order",
				"error", err)
			return active[0]
		}
		list = append(list, ranked{rot: rot, prio: p})
	}

	// Узкое окно побеждает; при равенстве — лексикографически меньшее
	// имя, для детерминированного выбора.
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].prio != list[j].prio {
			return list[i].prio < list[j].prio
		}
		return list[i].rot.Name < list[j].rot.Name
	})

	rot := list[0].rot
	m.logger.Debug("active rotation resolved", "rotation", rot.Name, "clock", clock)
	return rot
}

// FindDueUnit ищет в ротации следующий unit, требующий обновления.
//
// Возвращает копию unit: вызывающие не должны держать ссылки на
// внутреннее состояние вне мьютекса. Курсор ротации продвигается по
// правилам Rotation.FindDueUnit.
func (m *Manager) FindDueUnit(rotation string, now time.Time, globalDue bool) (*domain.ContentUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rot := m.findRotation(rotation)
	if rot == nil {
		return nil, fmt.Errorf("rotation %q: %w", rotation, domain.ErrNotFound)
	}
	u := rot.FindDueUnit(now, globalDue)
	if u == nil {
		return nil, nil
	}
	return u.Clone(), nil
}

// NextUnit безусловно продвигает курсор ротации и возвращает копию
// следующего unit.
func (m *Manager) NextUnit(rotation string) (*domain.ContentUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rot := m.findRotation(rotation)
	if rot == nil {
		return nil, fmt.Errorf("rotation %q: %w", rotation, domain.ErrNotFound)
	}
	u := rot.NextUnit()
	if u == nil {
		return nil, nil
	}
	return u.Clone(), nil
}

// --- Правки конфигурации ---
//
// Каждая мутация безусловно сбрасывает кэш последним шагом.

// AddRotation создаёт ротацию. Пустые границы окна — весь день.
func (m *Manager) AddRotation(name, start, end string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findRotation(name) != nil {
		return fmt.Errorf("rotation %q: %w", name, domain.ErrExists)
	}
	m.rotations = append(m.rotations, domain.NewRotation(name, start, end))
	m.invalidateLocked()
	return nil
}

// UpdateRotation меняет имя и окно существующей ротации.
func (m *Manager) UpdateRotation(oldName, newName, start, end string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rot := m.findRotation(oldName)
	if rot == nil {
		m.logger.Warn("rotation not found", "rotation", oldName)
		return fmt.Errorf("rotation %q: %w", oldName, domain.ErrNotFound)
	}
	if newName != oldName && m.findRotation(newName) != nil {
		return fmt.Errorf("rotation %q: %w", newName, domain.ErrExists)
	}
	rot.Name = newName
	rot.StartTime = start
	rot.EndTime = end
	m.invalidateLocked()
	return nil
}

// DeleteRotation удаляет ротацию по имени.
func (m *Manager) DeleteRotation(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, rot := range m.rotations {
		if rot.Name == name {
			m.rotations = append(m.rotations[:i], m.rotations[i+1:]...)
			m.invalidateLocked()
			return nil
		}
	}
	m.logger.Warn("rotation not found", "rotation", name)
	return fmt.Errorf("rotation %q: %w", name, domain.ErrNotFound)
}

// AddUnit добавляет unit в ротацию.
func (m *Manager) AddUnit(rotation string, unit *domain.ContentUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rot := m.findRotation(rotation)
	if rot == nil {
		m.logger.Warn("rotation not found", "rotation", rotation)
		return fmt.Errorf("rotation %q: %w", rotation, domain.ErrNotFound)
	}
	if err := rot.AddUnit(unit); err != nil {
		return err
	}
	m.invalidateLocked()
	return nil
}

// UpdateUnit применяет patch к unit в ротации.
func (m *Manager) UpdateUnit(rotation, pluginID, name string, patch domain.UnitPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rot := m.findRotation(rotation)
	if rot == nil {
		return fmt.Errorf("rotation %q: %w", rotation, domain.ErrNotFound)
	}
	if err := rot.UpdateUnit(pluginID, name, patch); err != nil {
		return err
	}
	m.invalidateLocked()
	return nil
}

// DeleteUnit удаляет unit из ротации.
func (m *Manager) DeleteUnit(rotation, pluginID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rot := m.findRotation(rotation)
	if rot == nil {
		return fmt.Errorf("rotation %q: %w", rotation, domain.ErrNotFound)
	}
	if err := rot.DeleteUnit(pluginID, name); err != nil {
		return err
	}
	m.invalidateLocked()
	return nil
}

// MarkRefreshed записывает выполненное обновление в unit.
// Время показа не влияет на выбор активной ротации, кэш не трогаем.
func (m *Manager) MarkRefreshed(rotation, pluginID, name string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rot := m.findRotation(rotation)
	if rot == nil {
		return fmt.Errorf("rotation %q: %w", rotation, domain.ErrNotFound)
	}
	u := rot.FindUnit(pluginID, name)
	if u == nil {
		return fmt.Errorf("unit %s/%s: %w", pluginID, name, domain.ErrNotFound)
	}
	u.MarkRefreshed(at)
	return nil
}

// --- Чтение ---

// Rotation возвращает копию ротации по имени.
func (m *Manager) Rotation(name string) (*domain.Rotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rot := m.findRotation(name)
	if rot == nil {
		return nil, fmt.Errorf("rotation %q: %w", name, domain.ErrNotFound)
	}
	return rot.Clone(), nil
}

// RotationNames возвращает имена всех ротаций в порядке конфигурации.
func (m *Manager) RotationNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.rotations))
	for i, rot := range m.rotations {
		names[i] = rot.Name
	}
	return names
}

// FindUnit ищет unit по ключу (plugin_id, name) во всех ротациях.
// Возвращает копию unit и имя его ротации.
func (m *Manager) FindUnit(pluginID, name string) (*domain.ContentUnit, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rot := range m.rotations {
		if u := rot.FindUnit(pluginID, name); u != nil {
			return u.Clone(), rot.Name, nil
		}
	}
	return nil, "", fmt.Errorf("unit %s/%s: %w", pluginID, name, domain.ErrNotFound)
}

// InvalidateCache сбрасывает кэш выбора активной ротации.
func (m *Manager) InvalidateCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidateLocked()
}

func (m *Manager) invalidateLocked() {
	m.cache = resolveCache{}
	m.logger.Debug("active rotation cache invalidated")
}

// findRotation — поиск без блокировки, вызывается под мьютексом.
func (m *Manager) findRotation(name string) *domain.Rotation {
	for _, rot := range m.rotations {
		if rot.Name == name {
			return rot
		}
	}
	return nil
}
