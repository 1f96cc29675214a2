package usecase

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCatalog is a fixed product set keyed by id, variant stock keyed by
// "productID|variantID".
type fakeCatalog struct {
	products map[int]domain.Product
	stock    map[string]int
}

func (f *fakeCatalog) Get(id int) (domain.Product, bool) {
	p, ok := f.products[id]
	return p, ok
}

func (f *fakeCatalog) AvailableStock(productID int, variantID string) int {
	return f.stock[stockKey(productID, variantID)]
}

func stockKey(productID int, variantID string) string {
	return fmt.Sprintf("%d|%s", productID, variantID)
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[int]domain.Product{
			1: {ID: 1, Name: "Headphones", Price: decimal.RequireFromString("10.00")},
			2: {ID: 2, Name: "Jacket", Price: decimal.RequireFromString("25.50")},
		},
		stock: map[string]int{
			stockKey(1, ""):          5,
			stockKey(2, "2:M/Black"): 3,
		},
	}
}

func TestCartAddItemClampsToStock(t *testing.T) {
	cart := NewCartService(newFakeCatalog(), testLogger())

	res := cart.AddItem(1, "", 2)
	assert.Equal(t, CartResult{Requested: 2, Granted: 2}, res)

	// Existing line: the clamp applies to the combined quantity.
	res = cart.AddItem(1, "", 10)
	assert.Equal(t, CartResult{Requested: 12, Granted: 5}, res)
	assert.Equal(t, 5, cart.Count())

	lines := cart.Snapshot()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	cart := NewCartService(newFakeCatalog(), testLogger())

	res := cart.AddItem(404, "", 1)
	assert.Equal(t, CartResult{Requested: 1, Granted: 0}, res)
	assert.Empty(t, cart.Snapshot())
}

func TestCartAddItemSnapshotsUnitPrice(t *testing.T) {
	catalog := newFakeCatalog()
	cart := NewCartService(catalog, testLogger())

	cart.AddItem(2, "2:M/Black", 1)

	// A later catalog price change must not move the line's price.
	p := catalog.products[2]
	p.Price = decimal.RequireFromString("999.99")
	catalog.products[2] = p

	lines := cart.Snapshot()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.RequireFromString("25.50")))
}

func TestCartNegativeDeltaRemovesAtZero(t *testing.T) {
	cart := NewCartService(newFakeCatalog(), testLogger())

	cart.AddItem(1, "", 3)
	res := cart.AddItem(1, "", -3)
	assert.Equal(t, CartResult{Requested: 0, Granted: 0}, res)
	assert.Empty(t, cart.Snapshot())
}

func TestCartSetQuantity(t *testing.T) {
	cart := NewCartService(newFakeCatalog(), testLogger())
	cart.AddItem(1, "", 1)

	res := cart.SetQuantity(1, "", 4)
	assert.Equal(t, CartResult{Requested: 4, Granted: 4}, res)

	res = cart.SetQuantity(1, "", 99)
	assert.Equal(t, CartResult{Requested: 99, Granted: 5}, res)

	res = cart.SetQuantity(1, "", 0)
	assert.Equal(t, 0, res.Granted)
	assert.Empty(t, cart.Snapshot())

	// Setting quantity on an absent line never creates one.
	res = cart.SetQuantity(1, "", 2)
	assert.Equal(t, 0, res.Granted)
	assert.Empty(t, cart.Snapshot())
}

func TestCartSubtotalAndCount(t *testing.T) {
	cart := NewCartService(newFakeCatalog(), testLogger())
	cart.AddItem(1, "", 2)          // 2 x 10.00
	cart.AddItem(2, "2:M/Black", 1) // 1 x 25.50

	assert.True(t, cart.Subtotal().Equal(decimal.RequireFromString("45.50")))
	assert.Equal(t, 3, cart.Count())

	cart.Remove(1, "")
	assert.True(t, cart.Subtotal().Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, 1, cart.Count())
}

func TestCartTakeAllAndRestore(t *testing.T) {
	cart := NewCartService(newFakeCatalog(), testLogger())
	cart.AddItem(1, "", 2)
	cart.AddItem(2, "2:M/Black", 1)

	taken := cart.takeAll()
	require.Len(t, taken, 2)
	assert.Empty(t, cart.Snapshot())

	cart.restore(taken)
	lines := cart.Snapshot()
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].ProductID)
	assert.Equal(t, 2, lines[1].ProductID)
}
