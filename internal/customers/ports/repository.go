package ports

import (
	"context"
	"errors"

	"github.com/gestorhq/gestor/internal/customers/domain"
	"github.com/google/uuid"
)

// CustomerRepository exposes persistence operations required by the application layer.
type CustomerRepository interface {
	Create(ctx context.Context, customer domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Customer, error)
	Update(ctx context.Context, customer domain.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListFilter narrows list queries. Search matches name and document number.
type ListFilter struct {
	Search   string
	Page     int
	PageSize int
}

// ErrNotFound is returned when the requested customer does not exist.
var ErrNotFound = errors.New("customer not found")
