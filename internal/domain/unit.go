package domain

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"
)

// RefreshPolicy — политика обновления контента.
//
// Unit может иметь и интервал, и ежедневное время: достаточно
// выполнения любого из условий, чтобы unit считался due.
type RefreshPolicy struct {
	// IntervalSec — интервал между обновлениями в секундах.
	IntervalSec int `json:"interval,omitempty"`

	// Scheduled — ежедневное время обновления в формате "HH:MM".
	Scheduled string `json:"scheduled,omitempty"`
}

// ContentUnit — один настроенный источник контента внутри ротации.
//
// Пара (PluginID, Name) — идентичность unit, уникальная в пределах
// своей ротации. Settings не интерпретируются ядром и передаются
// renderer-у как есть.
type ContentUnit struct {
	// PluginID — идентификатор плагина-источника контента.
	PluginID string `json:"plugin_id"`

	// Name — имя экземпляра, уникальное в пределах ротации.
	Name string `json:"name"`

	// Settings — непрозрачная конфигурация плагина.
	Settings map[string]any `json:"plugin_settings"`

	// Refresh — политика обновления.
	Refresh RefreshPolicy `json:"refresh"`

	// LatestRefresh — время последнего обновления.
	// nil — unit ещё ни разу не обновлялся.
	LatestRefresh *time.Time `json:"latest_refresh_time,omitempty"`
}

// Is проверяет идентичность unit по ключу (plugin_id, name).
func (u *ContentUnit) Is(pluginID, name string) bool {
	return u.PluginID == pluginID && u.Name == name
}

// IsDue проверяет, пора ли обновлять unit.
//
// Правила:
//   - Обновлений ещё не было — due.
//   - Интервал: due, если с последнего обновления прошло >= IntervalSec.
//   - Ежедневное время: due, если запланированное время суток было
//     пересечено после последнего обновления.
//
// Условия ежедневного времени намеренно избыточны и проверяются как
// объединение: строковое сравнение "последний refresh раньше
// запланированного сегодня" пересекается с точной проверкой по датам.
// Это поведение исходной политики, его нельзя схлопывать — варианты
// не эквивалентны на границе суток.
func (u *ContentUnit) IsDue(now time.Time) bool {
	if u.LatestRefresh == nil {
		return true
	}
	last := *u.LatestRefresh

	if u.Refresh.IntervalSec > 0 {
		if now.Sub(last) >= time.Duration(u.Refresh.IntervalSec)*time.Second {
			return true
		}
	}

	if u.Refresh.Scheduled != "" {
		// Эвристика в пределах дня: последний refresh был раньше
		// запланированного времени.
		if Clock(last) < u.Refresh.Scheduled {
			return true
		}

		sched, err := ParseClock(u.Refresh.Scheduled)
		if err != nil {
			slog.Warn("invalid scheduled refresh time",
				"plugin_id", u.PluginID,
				"instance", u.Name,
				"scheduled", u.Refresh.Scheduled,
			)
			return false
		}

		lastDate := dateOf(last)
		nowDate := dateOf(now)
		lastMin := minuteOfDay(last)
		nowMin := minuteOfDay(now)

		if lastDate.Before(nowDate) && nowMin >= sched {
			return true
		}
		if lastDate.Equal(nowDate) && lastMin < sched && sched <= nowMin {
			return true
		}
	}

	return false
}

// MarkRefreshed записывает время выполненного обновления.
func (u *ContentUnit) MarkRefreshed(t time.Time) {
	u.LatestRefresh = &t
}

// ImagePath возвращает имя файла со срендеренным контентом unit.
func (u *ContentUnit) ImagePath() string {
	return fmt.Sprintf("%s_%s.png", u.PluginID, strings.ReplaceAll(u.Name, " ", "_"))
}

// Clone возвращает копию unit. Settings копируются поверхностно.
func (u *ContentUnit) Clone() *ContentUnit {
	c := *u
	if u.Settings != nil {
		c.Settings = maps.Clone(u.Settings)
	}
	if u.LatestRefresh != nil {
		t := *u.LatestRefresh
		c.LatestRefresh = &t
	}
	return &c
}

// UnitPatch — частичное обновление ContentUnit.
// Перечисляет только изменяемые поля: идентичность и время последнего
// обновления через patch менять нельзя.
type UnitPatch struct {
	// Settings — новая конфигурация плагина (nil — не менять).
	Settings map[string]any

	// Refresh — новая политика обновления (nil — не менять).
	Refresh *RefreshPolicy
}

// Apply применяет patch к unit.
func (u *ContentUnit) Apply(p UnitPatch) {
	if p.Settings != nil {
		u.Settings = p.Settings
	}
	if p.Refresh != nil {
		u.Refresh = *p.Refresh
	}
}
