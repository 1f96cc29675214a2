package repo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
)

func order(id string, createdAt time.Time) *domain.Order {
	return &domain.Order{
		ID:            id,
		Items:         []domain.CartLine{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10)}},
		Total:         decimal.NewFromInt(20),
		CustomerPhone: "0712345678",
		Status:        domain.StatusPlaced,
		CreatedAt:     createdAt,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	o := order("SE1", time.Now())
	require.NoError(t, s.Create(ctx, o))

	got, err := s.GetByID(ctx, "SE1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.True(t, got.Total.Equal(o.Total))

	// The store hands out copies.
	got.Items[0].Quantity = 99
	again, _ := s.GetByID(ctx, "SE1")
	assert.Equal(t, 2, again.Items[0].Quantity)

	_, err = s.GetByID(ctx, "SE404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, s.Create(ctx, order("SE1", base)))
	require.NoError(t, s.Create(ctx, order("SE2", base.Add(time.Second))))
	require.NoError(t, s.Create(ctx, order("SE3", base.Add(2*time.Second))))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "SE3", list[0].ID)
	assert.Equal(t, "SE1", list[2].ID)
}

func TestMemoryStoreUpdateStatus(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, order("SE1", time.Now())))
	require.NoError(t, s.UpdateStatus(ctx, "SE1", domain.StatusShipped))

	got, _ := s.GetByID(ctx, "SE1")
	assert.Equal(t, domain.StatusShipped, got.Status)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "SE404", domain.StatusShipped), ErrNotFound)
}
