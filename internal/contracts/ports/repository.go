package ports

import (
	"context"
	"errors"

	"github.com/gestorhq/gestor/internal/contracts/domain"
	"github.com/google/uuid"
)

// ContractRepository exposes persistence operations required by the application layer.
type ContractRepository interface {
	Create(ctx context.Context, contract domain.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Contract, error)
	Update(ctx context.Context, contract domain.Contract) error
}

// ListFilter narrows list queries. NearExpiration keeps only open contracts
// ending within the next thirty days.
type ListFilter struct {
	Status         *domain.ContractStatus
	CustomerID     *uuid.UUID
	NearExpiration bool
	Page           int
	PageSize       int
}

// ErrNotFound is returned when the requested contract does not exist.
var ErrNotFound = errors.New("contract not found")

// ErrDuplicateNumber is returned when a contract number is already taken.
// Generated numbers have one-second resolution, so a retry gets a fresh one.
var ErrDuplicateNumber = errors.New("contract number already in use")
