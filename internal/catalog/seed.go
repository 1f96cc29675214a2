package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
)

// Seed loads products from a JSON file, or falls back to the built-in demo
// catalog when no path is configured.
func Seed(path string) ([]domain.Product, error) {
	if path == "" {
		return DefaultProducts(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return products, nil
}

// DefaultProducts is the demo storefront catalog. The jacket carries variant
// dimensions; the rest track plain base stock.
func DefaultProducts() []domain.Product {
	jacketOptions := []domain.VariantOption{
		{Name: "Size", Values: []string{"M", "L", "XL"}},
		{Name: "Color", Values: []string{"Black", "Navy"}},
	}
	jacketVariants := domain.RegenerateVariants(2, jacketOptions, nil)
	for i := range jacketVariants {
		jacketVariants[i].Stock = 5
	}

	return []domain.Product{
		{
			ID:          1,
			Name:        "Smart Noise-Cancelling Headphones",
			Category:    "Gadgets",
			Price:       decimal.RequireFromString("249.99"),
			Stock:       15,
			ImageURL:    "https://picsum.photos/seed/headphones/400/400",
			Description: "Immerse yourself in pure sound with our AI-powered noise-cancelling headphones.",
		},
		{
			ID:             2,
			Name:           "Urban Explorer Jacket",
			Category:       "Fashion",
			Price:          decimal.RequireFromString("129.50"),
			ImageURL:       "https://picsum.photos/seed/jacket/400/400",
			Description:    "A stylish and waterproof jacket designed for the modern adventurer.",
			VariantOptions: jacketOptions,
			Variants:       jacketVariants,
		},
		{
			ID:          3,
			Name:        "Portable 4K Projector",
			Category:    "Tech Tools",
			Price:       decimal.RequireFromString("499.00"),
			Stock:       8,
			ImageURL:    "https://picsum.photos/seed/projector/400/400",
			Description: "Transform any space into a cinema with this compact 4K projector.",
		},
		{
			ID:          4,
			Name:        "Minimalist Chrono Watch",
			Category:    "Fashion",
			Price:       decimal.RequireFromString("199.99"),
			Stock:       22,
			ImageURL:    "https://picsum.photos/seed/watch/400/400",
			Description: "A sleek timepiece with a genuine leather strap and sapphire crystal glass.",
		},
		{
			ID:          5,
			Name:        "Wireless Charging Dock",
			Category:    "Gadgets",
			Price:       decimal.RequireFromString("59.99"),
			Stock:       50,
			ImageURL:    "https://picsum.photos/seed/charger/400/400",
			Description: "Power up your phone, watch, and earbuds simultaneously.",
		},
	}
}
