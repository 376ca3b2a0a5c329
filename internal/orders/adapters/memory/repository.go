package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/google/uuid"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[uuid.UUID]domain.Order)}
}

// Create stores a new order instance with its items.
func (r *Repository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.Version = 1
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := cloneOrder(order)
	return &copy, nil
}

// List returns orders respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.CustomerID != nil && order.CustomerID != *filter.CustomerID {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return paginate(result, filter.Page, filter.PageSize), nil
}

// Update replaces the stored order if the version stamp still matches, then
// bumps the version.
func (r *Repository) Update(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if stored.Version != order.Version {
		return ports.ErrVersionConflict
	}

	order.Version++
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func cloneOrder(order domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}

func paginate(orders []domain.Order, page, pageSize int) []domain.Order {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= len(orders) {
		return []domain.Order{}
	}

	end := start + pageSize
	if end > len(orders) {
		end = len(orders)
	}

	slice := make([]domain.Order, end-start)
	copy(slice, orders[start:end])
	return slice
}

// Sequence is an in-memory counter satisfying ports.NumberSequence.
type Sequence struct {
	current atomic.Int64
}

// NewSequence constructs a sequence starting after the given value.
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.current.Store(start)
	return s
}

// Next returns the next number in the sequence.
func (s *Sequence) Next(context.Context) (int64, error) {
	return s.current.Add(1), nil
}
