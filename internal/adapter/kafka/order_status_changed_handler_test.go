package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ioproxxy/sahasexpress/internal/adapter/repo"
	domain "github.com/ioproxxy/sahasexpress/internal/entity"
	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

type stillScheduler struct{}

func (stillScheduler) After(time.Duration, func()) func() { return func() {} }

func TestOrderStatusUpdateHandler(t *testing.T) {
	store := repo.NewMemoryOrderStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	lc := usecase.NewOrderLifecycle(store, stillScheduler{}, nil, nil, time.Hour, 2*time.Hour, log)
	h := NewOrderStatusUpdateHandler(lc)

	ctx := context.Background()
	require.NoError(t, lc.Place(ctx, &domain.Order{
		ID:     "SE1",
		Total:  decimal.NewFromInt(10),
		Status: domain.StatusPlaced,
	}))

	require.NoError(t, h.Handle(ctx, usecase.OrderStatusUpdateMsg{OrderID: "SE1", Status: "Delivered"}))
	status, err := lc.CurrentStatus(ctx, "SE1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, status)

	// Unknown status text and unknown orders both surface as errors so the
	// message is retried instead of silently dropped.
	assert.Error(t, h.Handle(ctx, usecase.OrderStatusUpdateMsg{OrderID: "SE1", Status: "Lost"}))
	assert.Error(t, h.Handle(ctx, usecase.OrderStatusUpdateMsg{OrderID: "SE404", Status: "Shipped"}))
}
