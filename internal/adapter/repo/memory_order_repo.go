package repo

import (
	"context"
	"sort"
	"sync"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

// MemoryOrderStore is the default store when no database is configured.
// Orders survive only as long as the process does.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]*domain.Order)}
}

func (s *MemoryOrderStore) Create(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneOrder(o)
	s.orders[o.ID] = cp
	return nil
}

func (s *MemoryOrderStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *MemoryOrderStore) List(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryOrderStore) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	return nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.CartLine(nil), o.Items...)
	return &cp
}

var _ usecase.OrderStore = (*MemoryOrderStore)(nil)
