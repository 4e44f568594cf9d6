// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений
//   - consumer.go   — потребление сообщений
//
// Типы сообщений:
//   - refresh.due       — unit пора обновить (потребляет renderer)
//   - refresh.completed — обновление выполнено (потребляет vitrined)
//
// Exchanges:
//   - vitrine.refresh — события обновления контента
//   - vitrine.dlq     — dead letter queue
package mq
