// Package cli реализует инструмент командной строки Vitrine.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Vitrine API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления ротациями, плагинами и просмотра
// журнала обновлений.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Vitrine API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	rotations, err := client.ListRotations()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: vitrine rotation list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - rotation: list, create, show, update, delete
//   - plugin: add, update, remove, refresh
//   - status: active, log
//
// Каждая группа создаётся через фабричную функцию (NewRotationCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
