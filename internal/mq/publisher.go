package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Vitrine/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeRefreshDue       MessageType = "refresh.due"
	MessageTypeRefreshCompleted MessageType = "refresh.completed"
)

// Статусы завершения refresh-задания.
const (
	RefreshStatusSucceeded = "SUCCEEDED"
	RefreshStatusFailed    = "FAILED"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// RefreshDuePayload — задание на обновление контента unit.
// Потребитель: renderer.
type RefreshDuePayload struct {
	JobID          uuid.UUID          `json:"job_id"`
	PluginID       string             `json:"plugin_id"`
	PluginInstance string             `json:"plugin_instance"`
	Settings       map[string]any     `json:"plugin_settings,omitempty"`
	RefreshType    domain.RefreshType `json:"refresh_type"`
	Rotation       string             `json:"rotation,omitempty"`
}

// RefreshCompletedPayload — результат выполнения refresh-задания.
// Потребитель: vitrined.
type RefreshCompletedPayload struct {
	JobID          uuid.UUID          `json:"job_id"`
	PluginID       string             `json:"plugin_id"`
	PluginInstance string             `json:"plugin_instance"`
	RefreshType    domain.RefreshType `json:"refresh_type"`
	Rotation       string             `json:"rotation,omitempty"`
	Status         string             `json:"status"` // SUCCEEDED или FAILED
	ImageHash      string             `json:"image_hash,omitempty"`
	Error          string             `json:"error,omitempty"`
	FinishedAt     time.Time          `json:"finished_at"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishRefreshDue публикует задание на обновление unit.
func (p *Publisher) PublishRefreshDue(ctx context.Context, payload RefreshDuePayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeRefreshDue,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, ExchangeRefresh, RoutingKeyDue, msg)
}

// PublishRefreshCompleted публикует результат выполнения задания.
func (p *Publisher) PublishRefreshCompleted(ctx context.Context, payload RefreshCompletedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeRefreshCompleted,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, ExchangeRefresh, RoutingKeyCompleted, msg)
}
