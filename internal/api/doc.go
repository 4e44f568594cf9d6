// Package api реализует HTTP API планировщика дисплея.
//
// Структура:
//   - handler.go  — Handler с зависимостями
//   - routes.go   — маршруты
//   - dto.go      — request/response структуры
//   - response.go — helpers для JSON ответов и ошибок
//   - middleware.go — logging и recovery
//
// Соглашения: JSON для запросов и ответов, ошибки в формате
// {"error": {"code": ..., "message": ...}}.
package api
