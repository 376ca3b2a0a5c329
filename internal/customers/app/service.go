// Package app holds the customer use cases.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/gestorhq/gestor/internal/customers/domain"
	"github.com/gestorhq/gestor/internal/customers/ports"
	"github.com/google/uuid"
)

// CustomerInput carries the mutable fields for create and update.
type CustomerInput struct {
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	DocumentType       domain.DocumentType
	DocumentNumber     string
	ExternalContactRef string
}

// Service bundles customer use cases.
type Service struct {
	repo   ports.CustomerRepository
	logger *slog.Logger
}

func NewService(repo ports.CustomerRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateCustomer(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	customer := domain.NewCustomer(input.FirstName, input.LastName)
	applyInput(&customer, input)

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "customer created",
		"customer_id", customer.ID,
		"display_name", customer.DisplayName(),
	)

	return &customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context, filter ports.ListFilter) ([]domain.Customer, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyInput(customer, input)
	customer.UpdatedAt = time.Now().UTC()

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, *customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "customer deleted", "customer_id", id)
	return nil
}

func applyInput(customer *domain.Customer, input CustomerInput) {
	customer.FirstName = input.FirstName
	customer.LastName = input.LastName
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.DocumentType = input.DocumentType
	customer.DocumentNumber = input.DocumentNumber
	customer.ExternalContactRef = input.ExternalContactRef
}
