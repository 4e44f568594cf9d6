package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cycleParser — 5-польный парсер cron-выражений (без секунд).
var cycleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Cycle вычисляет флаг "глобальный интервал смены контента истёк".
//
// Cycle — это внешний по отношению к ядру планировщика override:
// когда он срабатывает, следующий unit ротации обновляется независимо
// от собственной политики. Поддерживаются два режима, любой из которых
// делает цикл due:
//   - фиксированный интервал в секундах;
//   - cron-выражение (например "0 3 * * *" — ночная полная перерисовка
//     e-ink панели).
type Cycle struct {
	interval time.Duration
	schedule cron.Schedule
	last     time.Time
}

// NewCycle создаёт Cycle. Пустое cron-выражение допустимо;
// нулевой интервал отключает интервальный режим.
func NewCycle(intervalSec int, cronExpr string) (*Cycle, error) {
	c := &Cycle{}
	if intervalSec > 0 {
		c.interval = time.Duration(intervalSec) * time.Second
	}
	if cronExpr != "" {
		sched, err := cycleParser.Parse(cronExpr)
		if err != nil {
			return nil, fmt.Errorf("parse cycle cron %q: %w", cronExpr, err)
		}
		c.schedule = sched
	}
	return c, nil
}

// Due проверяет, истёк ли глобальный цикл к моменту now.
// До первого Mark цикл всегда due.
func (c *Cycle) Due(now time.Time) bool {
	if c.last.IsZero() {
		return true
	}
	if c.interval > 0 && now.Sub(c.last) >= c.interval {
		return true
	}
	if c.schedule != nil && !c.schedule.Next(c.last).After(now) {
		return true
	}
	return false
}

// Mark фиксирует момент выполненной смены контента.
func (c *Cycle) Mark(now time.Time) {
	c.last = now
}
