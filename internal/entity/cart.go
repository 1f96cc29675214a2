package domain

import "github.com/shopspring/decimal"

// CartLine is one cart entry, identified by product plus optional variant.
// UnitPrice is a snapshot taken when the line was first added.
type CartLine struct {
	ProductID int             `json:"productId"`
	VariantID string          `json:"variantId,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Subtotal sums line totals over a cart snapshot.
func Subtotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}
