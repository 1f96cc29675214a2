package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

const (
	exchangeName      = "order.events"
	placedRoutingKey  = "order.placed"
	statusRoutingKey  = "order.status_changed"
	notificationQueue = "order.notifications.q"
)

// RabbitProducer publishes order events for downstream collaborators
// (notifications, analytics). It implements usecase.EventPublisher.
type RabbitProducer struct {
	ch *amqp.Channel
}

// NewRabbitProducer declares the exchange, the notification queue, and its
// bindings once at startup.
func NewRabbitProducer(ch *amqp.Channel) (*RabbitProducer, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		notificationQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	for _, rk := range []string{placedRoutingKey, statusRoutingKey} {
		if err := ch.QueueBind(q.Name, rk, exchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("queue bind %s: %w", rk, err)
		}
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitProducer{ch: ch}, nil
}

func (p *RabbitProducer) PublishOrderPlaced(ctx context.Context, msg usecase.OrderPlacedMsg) error {
	return p.publish(ctx, placedRoutingKey, msg)
}

func (p *RabbitProducer) PublishStatusChanged(ctx context.Context, msg usecase.StatusChangedMsg) error {
	return p.publish(ctx, statusRoutingKey, msg)
}

func (p *RabbitProducer) publish(ctx context.Context, routingKey string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

var _ usecase.EventPublisher = (*RabbitProducer)(nil)
