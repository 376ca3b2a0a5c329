// Package commands holds the contract write-side use cases.
package commands

import (
	"context"
	"errors"
	"time"

	"github.com/gestorhq/gestor/internal/contracts/domain"
	"github.com/gestorhq/gestor/internal/contracts/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateContractCommand carries the fields needed to draft a contract.
type CreateContractCommand struct {
	Title       string
	Description string
	CustomerID  uuid.UUID
	OrderID     *uuid.UUID
	TotalValue  decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Terms       string
	Notes       string
	CreatedBy   string
}

// Validate performs command-level validation before hitting the domain.
func (c CreateContractCommand) Validate() error {
	if c.Title == "" {
		return errors.New("title is required")
	}
	if c.CustomerID == uuid.Nil {
		return errors.New("customer_id is required")
	}
	if !c.TotalValue.IsPositive() {
		return errors.New("total_value must be positive")
	}
	return nil
}

type CreateContractCommandHandler struct {
	repo ports.ContractRepository
}

func NewCreateContractCommandHandler(repo ports.ContractRepository) *CreateContractCommandHandler {
	return &CreateContractCommandHandler{repo: repo}
}

func (h *CreateContractCommandHandler) Handle(ctx context.Context, cmd CreateContractCommand) (*domain.Contract, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	contract := domain.NewContract(cmd.Title, cmd.CustomerID, cmd.TotalValue)
	contract.Description = cmd.Description
	contract.OrderID = cmd.OrderID
	contract.Terms = cmd.Terms
	contract.Notes = cmd.Notes
	contract.UpdatedBy = cmd.CreatedBy
	if cmd.StartDate != nil {
		contract.StartDate = *cmd.StartDate
	}
	contract.EndDate = cmd.EndDate

	if err := contract.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, contract); err != nil {
		return nil, err
	}

	return &contract, nil
}
