package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
)

// OrderLifecycle owns every order after checkout hands it over. It schedules
// the simulated fulfilment transitions (Placed -> Processing -> Shipped) and
// applies externally driven updates; Delivered is only ever reached through
// UpdateStatus, nothing schedules it.
type OrderLifecycle struct {
	store  OrderStore
	sched  Scheduler
	cache  StatusCache    // optional
	events EventPublisher // optional
	log    *slog.Logger

	processingAfter time.Duration
	shippedAfter    time.Duration

	mu      sync.Mutex
	cancels map[string][]func()
}

func NewOrderLifecycle(store OrderStore, sched Scheduler, cache StatusCache, events EventPublisher, processingAfter, shippedAfter time.Duration, log *slog.Logger) *OrderLifecycle {
	return &OrderLifecycle{
		store:           store,
		sched:           sched,
		cache:           cache,
		events:          events,
		log:             log,
		processingAfter: processingAfter,
		shippedAfter:    shippedAfter,
		cancels:         make(map[string][]func()),
	}
}

// Place records a freshly created order and schedules its two fulfilment
// transitions. Both delays are measured from now and run independently; the
// shipped delay is the longer one, which is what keeps the status order.
func (l *OrderLifecycle) Place(ctx context.Context, order *domain.Order) error {
	if err := l.store.Create(ctx, order); err != nil {
		return err
	}
	l.cacheStatus(ctx, order.ID, order.Status)
	l.publishPlaced(ctx, order)
	l.log.Info("order placed", "order_id", order.ID, "total", order.Total.String(), "items", len(order.Items))

	id := order.ID
	c1 := l.sched.After(l.processingAfter, func() {
		l.advance(id, domain.StatusProcessing)
	})
	c2 := l.sched.After(l.shippedAfter, func() {
		l.advance(id, domain.StatusShipped)
	})

	l.mu.Lock()
	l.cancels[id] = []func(){c1, c2}
	l.mu.Unlock()
	return nil
}

// CurrentStatus is the read side used by order tracking.
func (l *OrderLifecycle) CurrentStatus(ctx context.Context, orderID string) (domain.Status, error) {
	order, err := l.store.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

func (l *OrderLifecycle) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return l.store.GetByID(ctx, orderID)
}

func (l *OrderLifecycle) List(ctx context.Context) ([]domain.Order, error) {
	return l.store.List(ctx)
}

// UpdateStatus sets an order's status. Re-applying the current status is a
// no-op. Callers are trusted to only move forward; backward transitions are
// not guarded against.
func (l *OrderLifecycle) UpdateStatus(ctx context.Context, orderID string, status domain.Status) error {
	order, err := l.store.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == status {
		return nil
	}
	if err := l.store.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	l.cacheStatus(ctx, orderID, status)
	l.publishStatusChanged(ctx, orderID, status)
	l.log.Info("order status updated", "order_id", orderID, "status", string(status))
	return nil
}

// Stop cancels every pending fulfilment timer. Transitions that have not
// fired yet simply never happen, matching a process teardown.
func (l *OrderLifecycle) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, cs := range l.cancels {
		for _, cancel := range cs {
			cancel()
		}
	}
	l.cancels = make(map[string][]func())
}

func (l *OrderLifecycle) advance(orderID string, status domain.Status) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.UpdateStatus(ctx, orderID, status); err != nil {
		l.log.Error("scheduled status transition failed", "order_id", orderID, "status", string(status), "error", err)
	}
}

func (l *OrderLifecycle) cacheStatus(ctx context.Context, orderID string, status domain.Status) {
	if l.cache == nil {
		return
	}
	if err := l.cache.SetStatus(ctx, orderID, string(status)); err != nil {
		l.log.Warn("status cache write failed", "order_id", orderID, "error", err)
	}
}

func (l *OrderLifecycle) publishPlaced(ctx context.Context, order *domain.Order) {
	if l.events == nil {
		return
	}
	msg := OrderPlacedMsg{
		OrderID:       order.ID,
		CustomerPhone: order.CustomerPhone,
		Total:         order.Total.String(),
		ItemCount:     len(order.Items),
	}
	if err := l.events.PublishOrderPlaced(ctx, msg); err != nil {
		l.log.Warn("order placed event publish failed", "order_id", order.ID, "error", err)
	}
}

func (l *OrderLifecycle) publishStatusChanged(ctx context.Context, orderID string, status domain.Status) {
	if l.events == nil {
		return
	}
	msg := StatusChangedMsg{OrderID: orderID, Status: string(status)}
	if err := l.events.PublishStatusChanged(ctx, msg); err != nil {
		l.log.Warn("status changed event publish failed", "order_id", orderID, "error", err)
	}
}
