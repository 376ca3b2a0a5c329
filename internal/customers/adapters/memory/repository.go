// Package memory provides an in-memory customer repository for tests and
// local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gestorhq/gestor/internal/customers/domain"
	"github.com/gestorhq/gestor/internal/customers/ports"
	"github.com/google/uuid"
)

type Repository struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]domain.Customer
}

func NewRepository() *Repository {
	return &Repository{customers: make(map[uuid.UUID]domain.Customer)}
}

func (r *Repository) Create(_ context.Context, customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[customer.ID] = customer
	return nil
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.customers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &customer, nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]domain.Customer, 0, len(r.customers))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, customer := range r.customers {
		if search != "" && !matchesSearch(customer, search) {
			continue
		}
		matches = append(matches, customer)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})

	return paginate(matches, filter.Page, filter.PageSize), nil
}

func (r *Repository) Update(_ context.Context, customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[customer.ID]; !ok {
		return ports.ErrNotFound
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *Repository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.customers, id)
	return nil
}

func matchesSearch(customer domain.Customer, search string) bool {
	return strings.Contains(strings.ToLower(customer.FullName()), search) ||
		strings.Contains(strings.ToLower(customer.DocumentNumber), search)
}

func paginate(customers []domain.Customer, page, pageSize int) []domain.Customer {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return customers
	}

	start := (page - 1) * pageSize
	if start >= len(customers) {
		return []domain.Customer{}
	}

	end := start + pageSize
	if end > len(customers) {
		end = len(customers)
	}

	return customers[start:end]
}
