// Package domain содержит модель данных планировщика дисплея.
//
// Основные типы:
//   - RefreshRecord — запись о последнем обновлении контента
//   - ContentUnit   — один источник контента внутри ротации
//   - Rotation      — именованная ротация с временным окном и курсором
//
// Вся логика в пакете чистая: никакого I/O, только вычисления над
// переданным временем. Персистентность — в internal/repo,
// управление набором ротаций — в internal/schedule.
package domain
