package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

// NotifyHandler consumes the order event queue and pushes customer
// notifications. The actual SMS/WhatsApp delivery lives behind Notifier; the
// default implementation just logs.
type NotifyHandler struct {
	notifier Notifier
	log      *slog.Logger
}

type Notifier interface {
	Notify(ctx context.Context, phone, message string) error
}

func NewNotifyHandler(n Notifier, log *slog.Logger) *NotifyHandler {
	return &NotifyHandler{notifier: n, log: log}
}

// Handle dispatches on routing key: order.placed carries the full placement
// message, order.status_changed only the transition.
func (h *NotifyHandler) Handle(ctx context.Context, d amqp.Delivery) error {
	switch d.RoutingKey {
	case placedRoutingKey:
		var msg usecase.OrderPlacedMsg
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			return err
		}
		return h.notifier.Notify(ctx, msg.CustomerPhone,
			"Order "+msg.OrderID+" placed. Total: Ksh "+msg.Total)
	case statusRoutingKey:
		var msg usecase.StatusChangedMsg
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			return err
		}
		h.log.Info("order status notification", "order_id", msg.OrderID, "status", msg.Status)
		return nil
	default:
		h.log.Warn("unexpected routing key", "routing_key", d.RoutingKey)
		return nil
	}
}

// LogNotifier is the stand-in delivery channel used until a real SMS gateway
// is wired.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, phone, message string) error {
	n.Log.Info("customer notification", "phone", phone, "message", message)
	return nil
}
