package domain

import (
	"fmt"
	"time"
)

// EndOfDay — специальное значение end_time, означающее конец суток.
// Окно "00:00"–"24:00" покрывает весь день, включая последнюю минуту.
const EndOfDay = "24:00"

// endOfDayMinutes — минута, эквивалентная "24:00" при сравнениях.
// Конец окна исключающий, поэтому 23:59 (1439) ещё внутри окна.
const endOfDayMinutes = 24 * 60

// ParseClock разбирает строку "HH:MM" в минуты от полуночи.
// Значение "24:00" здесь не принимается — оно имеет смысл только
// как end_time и обрабатывается на уровне Rotation.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Clock форматирует время как "HH:MM".
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// minuteOfDay возвращает минуту суток для timestamp.
func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// dateOf обнуляет время суток, оставляя календарную дату.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
