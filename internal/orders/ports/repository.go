package ports

import (
	"context"
	"errors"

	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/google/uuid"
)

// OrderRepository exposes persistence operations required by the application layer.
// Create and Update persist the order together with its items; Update checks the
// version stamp and returns ErrVersionConflict on a stale write.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	Update(ctx context.Context, order domain.Order) error
}

// ListFilter narrows list queries by status, customer and pagination.
type ListFilter struct {
	Status     *domain.OrderStatus
	CustomerID *uuid.UUID
	Page       int
	PageSize   int
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrVersionConflict is returned when an update lost the optimistic
	// concurrency race and must be retried on fresh state.
	ErrVersionConflict = errors.New("order was modified concurrently")
)
