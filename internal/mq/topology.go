package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeRefresh Exchange = "vitrine.refresh"
	ExchangeDLQ     Exchange = "vitrine.dlq"
)

// Queues — имена очередей.
const (
	QueueRefreshDue       Queue = "refresh.due"
	QueueRefreshCompleted Queue = "refresh.completed"
	QueueDLQRefresh       Queue = "dlq.refresh"
)

// Routing keys.
const (
	RoutingKeyDue        RoutingKey = "due"
	RoutingKeyCompleted  RoutingKey = "completed"
	RoutingKeyDLQRefresh RoutingKey = "refresh"
)

// SetupTopology объявляет exchanges, очереди и их привязки.
// Идемпотентна: повторное объявление существующей топологии безопасно.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

func declareExchanges(ch *amqp.Channel) error {
	for _, ex := range []Exchange{ExchangeRefresh, ExchangeDLQ} {
		err := ch.ExchangeDeclare(
			string(ex), // name
			"direct",   // type
			true,       // durable
			false,      // auto-deleted
			false,      // internal
			false,      // no-wait
			nil,        // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex, err)
		}
	}
	return nil
}

func declareQueues(ch *amqp.Channel) error {
	// refresh.due — с DLQ: битые задания не должны крутиться в очереди.
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQRefresh),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		{QueueRefreshDue, dlqArgs},
		{QueueRefreshCompleted, nil},
		{QueueDLQRefresh, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}
	return nil
}

func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueRefreshDue, RoutingKeyDue, ExchangeRefresh},
		{QueueRefreshCompleted, RoutingKeyCompleted, ExchangeRefresh},
		{QueueDLQRefresh, RoutingKeyDLQRefresh, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}
	return nil
}
