package usecase

import (
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
)

// CartService owns the shopping cart: an ordered set of lines, at most one per
// (product, variant) key. Every mutation clamps against current stock, so the
// quantity invariant holds by construction and none of these operations fail.
// Degenerate inputs (unknown product, stale variant, negative quantity) fall
// through to a no-op instead of an error; the UI is allowed to be stale.
type CartService struct {
	products ProductReader
	log      *slog.Logger

	mu    sync.Mutex
	lines []domain.CartLine
}

// CartResult reports what a mutation actually did. Granted below Requested
// means the quantity was capped by stock; callers can surface partial
// fulfilment without a dedicated error path.
type CartResult struct {
	Requested int
	Granted   int
}

func NewCartService(products ProductReader, log *slog.Logger) *CartService {
	return &CartService{products: products, log: log}
}

// AddItem adds delta units to the line keyed by (productID, variantID),
// creating it with the product's current price snapshot when absent. A new
// line clamped to zero is simply not added.
func (c *CartService) AddItem(productID int, variantID string, delta int) CartResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	available := c.products.AvailableStock(productID, variantID)

	if i := c.find(productID, variantID); i >= 0 {
		requested := c.lines[i].Quantity + delta
		granted := domain.Clamp(requested, available)
		if granted <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return CartResult{Requested: requested, Granted: 0}
		}
		c.lines[i].Quantity = granted
		return CartResult{Requested: requested, Granted: granted}
	}

	granted := domain.Clamp(delta, available)
	if granted == 0 {
		return CartResult{Requested: delta, Granted: 0}
	}
	p, ok := c.products.Get(productID)
	if !ok {
		// AvailableStock already returned 0 for unknown products, so this
		// only races a concurrent catalog delete.
		return CartResult{Requested: delta, Granted: 0}
	}
	c.lines = append(c.lines, domain.CartLine{
		ProductID: productID,
		VariantID: variantID,
		Quantity:  granted,
		UnitPrice: p.Price,
	})
	c.log.Debug("cart line added", "product_id", productID, "variant_id", variantID, "quantity", granted)
	return CartResult{Requested: delta, Granted: granted}
}

// SetQuantity sets the line's quantity outright. Zero or below removes the
// line; requests above stock are silently capped, never rejected.
func (c *CartService) SetQuantity(productID int, variantID string, quantity int) CartResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.find(productID, variantID)
	if quantity <= 0 {
		if i >= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return CartResult{Requested: quantity, Granted: 0}
	}
	if i < 0 {
		return CartResult{Requested: quantity, Granted: 0}
	}

	granted := domain.Clamp(quantity, c.products.AvailableStock(productID, variantID))
	if granted == 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return CartResult{Requested: quantity, Granted: 0}
	}
	c.lines[i].Quantity = granted
	return CartResult{Requested: quantity, Granted: granted}
}

// Remove deletes the matching line. Removing an absent line is a no-op.
func (c *CartService) Remove(productID int, variantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.find(productID, variantID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Snapshot returns a copy of the lines in insertion order.
func (c *CartService) Snapshot() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CartLine(nil), c.lines...)
}

func (c *CartService) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Subtotal(c.lines)
}

// Count is the total unit count across lines, for the cart badge.
func (c *CartService) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// takeAll removes and returns every line in one step. Checkout uses it as the
// commit point so order creation and cart clearing are atomic.
func (c *CartService) takeAll() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := c.lines
	c.lines = nil
	return lines
}

// restore puts lines taken by takeAll back, in front of anything added since.
func (c *CartService) restore(lines []domain.CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(append([]domain.CartLine(nil), lines...), c.lines...)
}

func (c *CartService) find(productID int, variantID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID && l.VariantID == variantID {
			return i
		}
	}
	return -1
}
