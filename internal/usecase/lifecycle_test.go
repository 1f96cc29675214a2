package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
)

// manualScheduler collects scheduled work and fires it on demand, keyed by
// delay so tests can advance "time" one transition at a time.
type manualScheduler struct {
	mu   sync.Mutex
	jobs []manualJob
}

type manualJob struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

func (s *manualScheduler) After(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.jobs)
	s.jobs = append(s.jobs, manualJob{delay: d, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.jobs[i].cancelled = true
	}
}

func (s *manualScheduler) fire(d time.Duration) {
	s.mu.Lock()
	var run []func()
	for i := range s.jobs {
		if s.jobs[i].delay == d && !s.jobs[i].cancelled && s.jobs[i].fn != nil {
			run = append(run, s.jobs[i].fn)
			s.jobs[i].fn = nil
		}
	}
	s.mu.Unlock()
	for _, fn := range run {
		fn()
	}
}

type capturedEvents struct {
	mu      sync.Mutex
	placed  []OrderPlacedMsg
	changed []StatusChangedMsg
}

func (e *capturedEvents) PublishOrderPlaced(_ context.Context, msg OrderPlacedMsg) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.placed = append(e.placed, msg)
	return nil
}

func (e *capturedEvents) PublishStatusChanged(_ context.Context, msg StatusChangedMsg) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.changed = append(e.changed, msg)
	return nil
}

func placedOrder(id string) *domain.Order {
	return &domain.Order{
		ID:            id,
		Items:         []domain.CartLine{{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		Total:         decimal.NewFromInt(10),
		CustomerPhone: "0712345678",
		Status:        domain.StatusPlaced,
		CreatedAt:     time.Now(),
	}
}

func TestLifecycleFulfilmentProgression(t *testing.T) {
	store := newMemStore()
	sched := &manualScheduler{}
	events := &capturedEvents{}
	lc := NewOrderLifecycle(store, sched, nil, events, 10*time.Second, 30*time.Second, testLogger())

	ctx := context.Background()
	require.NoError(t, lc.Place(ctx, placedOrder("SE1")))

	status, err := lc.CurrentStatus(ctx, "SE1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, status)

	sched.fire(10 * time.Second)
	status, _ = lc.CurrentStatus(ctx, "SE1")
	assert.Equal(t, domain.StatusProcessing, status)

	sched.fire(30 * time.Second)
	status, _ = lc.CurrentStatus(ctx, "SE1")
	assert.Equal(t, domain.StatusShipped, status)

	// Nothing ever schedules Delivered.
	require.Len(t, events.placed, 1)
	assert.Equal(t, "SE1", events.placed[0].OrderID)
	require.Len(t, events.changed, 2)
	assert.Equal(t, string(domain.StatusProcessing), events.changed[0].Status)
	assert.Equal(t, string(domain.StatusShipped), events.changed[1].Status)
}

func TestLifecycleDeliveredOnlyExplicit(t *testing.T) {
	store := newMemStore()
	sched := &manualScheduler{}
	lc := NewOrderLifecycle(store, sched, nil, nil, 10*time.Second, 30*time.Second, testLogger())

	ctx := context.Background()
	require.NoError(t, lc.Place(ctx, placedOrder("SE2")))
	sched.fire(10 * time.Second)
	sched.fire(30 * time.Second)

	require.NoError(t, lc.UpdateStatus(ctx, "SE2", domain.StatusDelivered))
	status, _ := lc.CurrentStatus(ctx, "SE2")
	assert.Equal(t, domain.StatusDelivered, status)
}

func TestLifecycleUpdateStatusIdempotent(t *testing.T) {
	store := newMemStore()
	events := &capturedEvents{}
	lc := NewOrderLifecycle(store, &manualScheduler{}, nil, events, 10*time.Second, 30*time.Second, testLogger())

	ctx := context.Background()
	require.NoError(t, lc.Place(ctx, placedOrder("SE3")))

	require.NoError(t, lc.UpdateStatus(ctx, "SE3", domain.StatusProcessing))
	require.NoError(t, lc.UpdateStatus(ctx, "SE3", domain.StatusProcessing))

	// The repeat is a no-op: one transition, one event.
	assert.Len(t, events.changed, 1)
}

func TestLifecycleUpdateStatusUnknownOrder(t *testing.T) {
	lc := NewOrderLifecycle(newMemStore(), &manualScheduler{}, nil, nil, 10*time.Second, 30*time.Second, testLogger())
	err := lc.UpdateStatus(context.Background(), "SE404", domain.StatusShipped)
	assert.Error(t, err)
}

func TestLifecycleStopCancelsTimers(t *testing.T) {
	store := newMemStore()
	sched := &manualScheduler{}
	lc := NewOrderLifecycle(store, sched, nil, nil, 10*time.Second, 30*time.Second, testLogger())

	ctx := context.Background()
	require.NoError(t, lc.Place(ctx, placedOrder("SE4")))
	lc.Stop()

	sched.fire(10 * time.Second)
	sched.fire(30 * time.Second)

	status, _ := lc.CurrentStatus(ctx, "SE4")
	assert.Equal(t, domain.StatusPlaced, status)
}
