// Package schedule реализует ядро планировщика дисплея.
//
// Структура:
//   - manager.go — Manager: набор ротаций, выбор активной, кэш, правки
//   - cycle.go   — Cycle: глобальный интервал/cron смены контента
//   - loop.go    — Loop: тик-цикл, публикация refresh-заданий,
//     обработка завершений
//
// Использование:
//
//	mgr := schedule.NewManagerFromState(st, logger)
//
//	// раз в секунду
//	rot := mgr.ResolveActive(time.Now())
//	if rot != nil {
//	    unit, _ := mgr.FindDueUnit(rot.Name, time.Now(), cycle.Due(time.Now()))
//	    ...
//	}
//
// Вся работа с состоянием идёт под одним грубым мьютексом Manager:
// выбор активной ротации и запись кэша не атомарны как пара, а правки
// конфигурации не должны перемежаться с выполняющимся выбором.
package schedule
