// Package memory provides an in-memory contract repository for tests and
// local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gestorhq/gestor/internal/contracts/domain"
	"github.com/gestorhq/gestor/internal/contracts/ports"
	"github.com/google/uuid"
)

type Repository struct {
	mu        sync.RWMutex
	contracts map[uuid.UUID]domain.Contract
}

func NewRepository() *Repository {
	return &Repository{contracts: make(map[uuid.UUID]domain.Contract)}
}

func (r *Repository) Create(_ context.Context, contract domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[contract.ID] = contract
	return nil
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*domain.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contract, ok := r.contracts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &contract, nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]domain.Contract, 0, len(r.contracts))
	for _, contract := range r.contracts {
		if filter.Status != nil && contract.Status != *filter.Status {
			continue
		}
		if filter.CustomerID != nil && contract.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.NearExpiration && !contract.IsNearExpiration() {
			continue
		}
		matches = append(matches, contract)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})

	return paginate(matches, filter.Page, filter.PageSize), nil
}

func (r *Repository) Update(_ context.Context, contract domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contracts[contract.ID]; !ok {
		return ports.ErrNotFound
	}
	r.contracts[contract.ID] = contract
	return nil
}

func paginate(contracts []domain.Contract, page, pageSize int) []domain.Contract {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return contracts
	}

	start := (page - 1) * pageSize
	if start >= len(contracts) {
		return []domain.Contract{}
	}

	end := start + pageSize
	if end > len(contracts) {
		end = len(contracts)
	}

	return contracts[start:end]
}
