package domain

import (
	"fmt"
	"log/slog"
	"time"
)

// Значения окна по умолчанию: ротация без явного окна активна весь день.
const (
	DefaultStart = "00:00"
	DefaultEnd   = EndOfDay
)

// Rotation — именованная ротация контента с временным окном.
//
// Окно задаётся строками "HH:MM"; end_time — исключающая граница,
// start_time — включающая. Если start > end, окно переходит через
// полночь (например "22:00"–"06:00"). Cursor — индекс последнего
// показанного unit; nil, пока ротация ни разу не обслуживалась.
type Rotation struct {
	// Name — имя ротации, уникальное в пределах планировщика.
	Name string `json:"name"`

	// StartTime — начало окна, "HH:MM", включительно.
	StartTime string `json:"start_time"`

	// EndTime — конец окна, "HH:MM" или "24:00", исключительно.
	EndTime string `json:"end_time"`

	// Plugins — упорядоченный список units.
	Plugins []*ContentUnit `json:"plugins"`

	// Cursor — индекс последнего обслуженного unit.
	Cursor *int `json:"current_plugin_index,omitempty"`
}

// NewRotation создаёт ротацию. Пустые границы окна заменяются
// значениями по умолчанию (весь день).
func NewRotation(name, start, end string) *Rotation {
	if start == "" {
		start = DefaultStart
	}
	if end == "" {
		end = DefaultEnd
	}
	return &Rotation{
		Name:      name,
		StartTime: start,
		EndTime:   end,
		Plugins:   []*ContentUnit{},
	}
}

// IsActive проверяет, активна ли ротация в момент clock ("HH:MM").
//
// Некорректный формат времени — не фатальная ошибка: проверка
// закрывается (false) с warning в лог.
func (r *Rotation) IsActive(clock string) bool {
	cur, err := ParseClock(clock)
	if err != nil {
		slog.Warn("invalid current time for rotation window check",
			"rotation", r.Name, "time", clock, "error", err)
		return false
	}

	start, end, err := r.window()
	if err != nil {
		slog.Warn("invalid time window in rotation",
			"rotation", r.Name, "error", err)
		return false
	}

	if start > end {
		// Окно через полночь.
		return cur >= start || cur < end
	}
	return start <= cur && cur < end
}

// Priority возвращает приоритет ротации: длительность окна в минутах.
// Чем короче окно, тем выше приоритет (узкие окна побеждают широкие).
func (r *Rotation) Priority() (int, error) {
	start, end, err := r.window()
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

// window разбирает границы окна в минуты суток.
// "24:00" в конце окна означает 00:00 следующего дня.
func (r *Rotation) window() (start, end int, err error) {
	start, err = ParseClock(r.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("rotation %q start_time: %w", r.Name, err)
	}
	if r.EndTime == EndOfDay {
		return start, endOfDayMinutes, nil
	}
	end, err = ParseClock(r.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("rotation %q end_time: %w", r.Name, err)
	}
	return start, end, nil
}

// cursor возвращает позицию курсора или -1, если курсор не установлен
// либо вышел за пределы списка. Документ из хранилища может содержать
// произвольный current_plugin_index, такой курсор считается пустым.
func (r *Rotation) cursor() int {
	if r.Cursor == nil || *r.Cursor < 0 || *r.Cursor >= len(r.Plugins) {
		return -1
	}
	return *r.Cursor
}

// NextUnit безусловно продвигает курсор на следующий unit (с переходом
// через конец списка) и возвращает его. Используется для простого
// листания ротации, независимо от необходимости обновления.
func (r *Rotation) NextUnit() *ContentUnit {
	if len(r.Plugins) == 0 {
		return nil
	}
	idx := 0
	if c := r.cursor(); c >= 0 {
		idx = (c + 1) % len(r.Plugins)
	}
	r.Cursor = &idx
	return r.Plugins[idx]
}

// FindDueUnit ищет следующий unit, требующий обновления.
//
// Курсор не меняется, пока unit не найден: повторные опросы, когда
// обновлять нечего, не должны влиять на порядок показа.
//
//  1. Сначала проверяется unit под курсором — если он due (или действует
//     глобальный override), он возвращается, курсор остаётся на месте.
//  2. Иначе — сканирование вперёд от (cursor+1) с одним полным оборотом;
//     первый подходящий unit становится новым положением курсора.
//  3. Никто не подошёл — nil, курсор не тронут.
func (r *Rotation) FindDueUnit(now time.Time, globalDue bool) *ContentUnit {
	if len(r.Plugins) == 0 {
		return nil
	}

	if c := r.cursor(); c >= 0 {
		cur := r.Plugins[c]
		if cur.IsDue(now) || globalDue {
			return cur
		}
	}

	start := 0
	if c := r.cursor(); c >= 0 {
		start = c + 1
	}
	for i := 0; i < len(r.Plugins); i++ {
		idx := (start + i) % len(r.Plugins)
		u := r.Plugins[idx]
		if u.IsDue(now) || globalDue {
			r.Cursor = &idx
			return u
		}
	}

	return nil
}

// FindUnit возвращает unit по ключу (plugin_id, name) или nil.
func (r *Rotation) FindUnit(pluginID, name string) *ContentUnit {
	for _, u := range r.Plugins {
		if u.Is(pluginID, name) {
			return u
		}
	}
	return nil
}

// AddUnit добавляет unit в конец ротации.
// Возвращает ErrExists, если unit с таким ключом уже есть.
func (r *Rotation) AddUnit(u *ContentUnit) error {
	if r.FindUnit(u.PluginID, u.Name) != nil {
		return fmt.Errorf("unit %s/%s in rotation %q: %w", u.PluginID, u.Name, r.Name, ErrExists)
	}
	r.Plugins = append(r.Plugins, u)
	return nil
}

// UpdateUnit применяет patch к unit по ключу.
func (r *Rotation) UpdateUnit(pluginID, name string, patch UnitPatch) error {
	u := r.FindUnit(pluginID, name)
	if u == nil {
		return fmt.Errorf("unit %s/%s in rotation %q: %w", pluginID, name, r.Name, ErrNotFound)
	}
	u.Apply(patch)
	return nil
}

// DeleteUnit удаляет unit по ключу.
// Курсор сбрасывается, если после удаления он указывает мимо списка.
func (r *Rotation) DeleteUnit(pluginID, name string) error {
	for i, u := range r.Plugins {
		if u.Is(pluginID, name) {
			r.Plugins = append(r.Plugins[:i], r.Plugins[i+1:]...)
			if r.Cursor != nil && *r.Cursor >= len(r.Plugins) {
				r.Cursor = nil
			}
			return nil
		}
	}
	return fmt.Errorf("unit %s/%s in rotation %q: %w", pluginID, name, r.Name, ErrNotFound)
}

// Clone возвращает глубокую копию ротации.
func (r *Rotation) Clone() *Rotation {
	c := *r
	c.Plugins = make([]*ContentUnit, len(r.Plugins))
	for i, u := range r.Plugins {
		c.Plugins[i] = u.Clone()
	}
	if r.Cursor != nil {
		idx := *r.Cursor
		c.Cursor = &idx
	}
	return &c
}
