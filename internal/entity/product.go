package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrVariantUnavailable  = errors.New("variant unavailable")
	ErrIncompleteSelection = errors.New("incomplete variant selection")
)

// VariantOption is one purchasable dimension of a product (Size, Color, ...).
// Value order is the order combinations are generated in.
type VariantOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ProductVariant is one concrete combination of option values with its own stock.
type ProductVariant struct {
	ID      string            `json:"id"`
	Options map[string]string `json:"options"`
	Stock   int               `json:"stock"`
}

type Product struct {
	ID             int              `json:"id"`
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	Price          decimal.Decimal  `json:"price"`
	Stock          int              `json:"stock"`
	ImageURL       string           `json:"imageUrl"`
	Description    string           `json:"description"`
	VariantOptions []VariantOption  `json:"variantOptions,omitempty"`
	Variants       []ProductVariant `json:"variants,omitempty"`
}

func (p *Product) HasVariants() bool {
	return len(p.VariantOptions) > 0
}

// EffectiveStock is the sum of variant stocks when options are declared,
// otherwise the base stock.
func (p *Product) EffectiveStock() int {
	if !p.HasVariants() {
		return p.Stock
	}
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// AvailableStock returns the stock backing a cart line. An unresolvable
// variant id counts as out of stock rather than an error.
func (p *Product) AvailableStock(variantID string) int {
	if variantID == "" {
		return p.EffectiveStock()
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v.Stock
		}
	}
	return 0
}

// Variant looks up a variant by id.
func (p *Product) Variant(variantID string) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// ResolveVariant matches a full option selection to the unique variant carrying
// it. Every declared option must be selected; a partial selection cannot be
// resolved and a selection pointing at no existing combination (e.g. stale UI
// state after the option set was edited) is unavailable.
func (p *Product) ResolveVariant(selected map[string]string) (ProductVariant, error) {
	for _, opt := range p.VariantOptions {
		if _, ok := selected[opt.Name]; !ok {
			return ProductVariant{}, ErrIncompleteSelection
		}
	}
	for _, v := range p.Variants {
		if matchesSelection(v.Options, selected) {
			return v, nil
		}
	}
	return ProductVariant{}, ErrVariantUnavailable
}

func matchesSelection(options, selected map[string]string) bool {
	for name, value := range selected {
		if options[name] != value {
			return false
		}
	}
	return true
}

// Combinations expands option value lists into the full Cartesian product, in
// option declaration order. An empty option list, or any option with no
// values, yields no combinations: the product behaves as a non-variant one.
func Combinations(options []VariantOption) []map[string]string {
	if len(options) == 0 {
		return nil
	}
	for _, opt := range options {
		if len(opt.Values) == 0 {
			return nil
		}
	}

	combos := []map[string]string{{}}
	for _, opt := range options {
		next := make([]map[string]string, 0, len(combos)*len(opt.Values))
		for _, base := range combos {
			for _, value := range opt.Values {
				combo := make(map[string]string, len(base)+1)
				for k, v := range base {
					combo[k] = v
				}
				combo[opt.Name] = value
				next = append(next, combo)
			}
		}
		combos = next
	}
	return combos
}

// RegenerateVariants rebuilds a product's variant set after its options were
// edited. Variants are matched to new combinations by their composite option
// key: matched ones keep their operator-entered stock, new combinations start
// at zero, and combinations that disappeared are dropped.
func RegenerateVariants(productID int, options []VariantOption, existing []ProductVariant) []ProductVariant {
	combos := Combinations(options)
	if len(combos) == 0 {
		return nil
	}

	byKey := make(map[string]ProductVariant, len(existing))
	for _, v := range existing {
		byKey[optionKey(options, v.Options)] = v
	}

	out := make([]ProductVariant, 0, len(combos))
	for _, combo := range combos {
		variant := ProductVariant{
			ID:      variantID(productID, options, combo),
			Options: combo,
		}
		if prev, ok := byKey[optionKey(options, combo)]; ok {
			variant.Stock = prev.Stock
		}
		out = append(out, variant)
	}
	return out
}

// optionKey builds the composite identity of a combination, stable across
// regenerations because it follows option declaration order.
func optionKey(options []VariantOption, combo map[string]string) string {
	parts := make([]string, 0, len(options))
	for _, opt := range options {
		parts = append(parts, opt.Name+"="+combo[opt.Name])
	}
	return strings.Join(parts, "|")
}

func variantID(productID int, options []VariantOption, combo map[string]string) string {
	values := make([]string, 0, len(options))
	for _, opt := range options {
		values = append(values, combo[opt.Name])
	}
	return fmt.Sprintf("%d:%s", productID, strings.Join(values, "/"))
}

// Clamp caps a requested quantity to what stock allows. It never fails:
// negative requests clamp to zero, oversized ones to the available stock.
func Clamp(requested, available int) int {
	if requested < 0 {
		requested = 0
	}
	if requested > available {
		return available
	}
	return requested
}
