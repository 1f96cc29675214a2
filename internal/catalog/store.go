package catalog

import (
	"errors"
	"sync"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
)

var ErrProductNotFound = errors.New("product not found")

// Store is the in-memory product catalog. The checkout core only reads it;
// writes come from the catalog editor through SetVariantOptions.
type Store struct {
	mu       sync.RWMutex
	products map[int]*domain.Product
	ordering []int
}

func NewStore(seed []domain.Product) *Store {
	s := &Store{products: make(map[int]*domain.Product, len(seed))}
	for i := range seed {
		p := cloneProduct(&seed[i])
		s.products[p.ID] = p
		s.ordering = append(s.ordering, p.ID)
	}
	return s
}

func (s *Store) Get(id int) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, false
	}
	return *cloneProduct(p), true
}

func (s *Store) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.ordering))
	for _, id := range s.ordering {
		out = append(out, *cloneProduct(s.products[id]))
	}
	return out
}

// AvailableStock reports the stock backing a (product, variant) pair. Unknown
// products and unresolvable variants count as out of stock.
func (s *Store) AvailableStock(productID int, variantID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return 0
	}
	return p.AvailableStock(variantID)
}

// SetVariantOptions replaces a product's option lists and regenerates its
// variant set, preserving stock counts of combinations that survived the edit.
func (s *Store) SetVariantOptions(productID int, options []domain.VariantOption) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	p.VariantOptions = cloneOptions(options)
	p.Variants = domain.RegenerateVariants(p.ID, p.VariantOptions, p.Variants)
	return *cloneProduct(p), nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	c.VariantOptions = cloneOptions(p.VariantOptions)
	if p.Variants != nil {
		c.Variants = make([]domain.ProductVariant, len(p.Variants))
		for i, v := range p.Variants {
			cv := v
			cv.Options = make(map[string]string, len(v.Options))
			for k, val := range v.Options {
				cv.Options[k] = val
			}
			c.Variants[i] = cv
		}
	}
	return &c
}

func cloneOptions(options []domain.VariantOption) []domain.VariantOption {
	if options == nil {
		return nil
	}
	out := make([]domain.VariantOption, len(options))
	for i, opt := range options {
		out[i] = domain.VariantOption{Name: opt.Name, Values: append([]string(nil), opt.Values...)}
	}
	return out
}
