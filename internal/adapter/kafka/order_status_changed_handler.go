package kafka

import (
	"context"
	"fmt"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

// OrderStatusUpdateHandler applies externally reported transitions to the
// lifecycle. Fulfilment publishes here; it is the only path that moves an
// order to Delivered.
type OrderStatusUpdateHandler struct {
	Lifecycle *usecase.OrderLifecycle
}

func NewOrderStatusUpdateHandler(lc *usecase.OrderLifecycle) *OrderStatusUpdateHandler {
	return &OrderStatusUpdateHandler{Lifecycle: lc}
}

func (h *OrderStatusUpdateHandler) Handle(ctx context.Context, ev usecase.OrderStatusUpdateMsg) error {
	status, err := domain.ParseStatus(ev.Status)
	if err != nil {
		return fmt.Errorf("status %q: %w", ev.Status, err)
	}
	return h.Lifecycle.UpdateStatus(ctx, ev.OrderID, status)
}
