// Package app holds the contract use cases.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/gestorhq/gestor/internal/contracts/app/commands"
	"github.com/gestorhq/gestor/internal/contracts/app/queries"
	"github.com/gestorhq/gestor/internal/contracts/domain"
	"github.com/gestorhq/gestor/internal/contracts/ports"
	"github.com/google/uuid"
)

// Service bundles use cases for handling contracts via the API.
type Service struct {
	repo              ports.ContractRepository
	createHandler     *commands.CreateContractCommandHandler
	transitionHandler *commands.TransitionContractCommandHandler
	getHandler        *queries.GetContractQueryHandler
	listHandler       *queries.ListContractsQueryHandler
}

// NewService wires required dependencies.
func NewService(repo ports.ContractRepository, events ports.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:              repo,
		createHandler:     commands.NewCreateContractCommandHandler(repo),
		transitionHandler: commands.NewTransitionContractCommandHandler(repo, events, logger),
		getHandler:        queries.NewGetContractQueryHandler(repo),
		listHandler:       queries.NewListContractsQueryHandler(repo),
	}
}

func (s *Service) CreateContract(ctx context.Context, cmd commands.CreateContractCommand) (*domain.Contract, error) {
	return s.createHandler.Handle(ctx, cmd)
}

func (s *Service) GetContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return s.getHandler.Handle(ctx, queries.GetContractQuery{ContractID: id})
}

func (s *Service) ListContracts(ctx context.Context, filter ports.ListFilter) ([]domain.Contract, error) {
	return s.listHandler.Handle(ctx, queries.ListContractsQuery{Filter: filter})
}

// UpdateContract mutates the editable fields of a draft contract.
func (s *Service) UpdateContract(ctx context.Context, id uuid.UUID, cmd commands.CreateContractCommand) (*domain.Contract, error) {
	contract, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if contract.Status != domain.ContractDraft {
		return nil, &domain.TransitionError{Current: contract.Status, Attempted: "edit"}
	}

	contract.Title = cmd.Title
	contract.Description = cmd.Description
	contract.OrderID = cmd.OrderID
	contract.TotalValue = cmd.TotalValue
	contract.Terms = cmd.Terms
	contract.Notes = cmd.Notes
	if cmd.StartDate != nil {
		contract.StartDate = *cmd.StartDate
	}
	contract.EndDate = cmd.EndDate
	contract.UpdatedBy = cmd.CreatedBy
	contract.UpdatedAt = time.Now().UTC()

	if err := contract.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, *contract); err != nil {
		return nil, err
	}

	return contract, nil
}

func (s *Service) ConfirmContract(ctx context.Context, id uuid.UUID, by string) (*domain.Contract, error) {
	return s.transitionHandler.Confirm(ctx, commands.ConfirmContractCommand{ContractID: id, By: by})
}

func (s *Service) SignContract(ctx context.Context, id uuid.UUID, by string, signedDate *time.Time) (*domain.Contract, error) {
	return s.transitionHandler.Sign(ctx, commands.SignContractCommand{ContractID: id, By: by, SignedDate: signedDate})
}

func (s *Service) SuspendContract(ctx context.Context, id uuid.UUID, by string) (*domain.Contract, error) {
	return s.transitionHandler.Suspend(ctx, commands.SuspendContractCommand{ContractID: id, By: by})
}

func (s *Service) CancelContract(ctx context.Context, id uuid.UUID, by string) (*domain.Contract, error) {
	return s.transitionHandler.Cancel(ctx, commands.CancelContractCommand{ContractID: id, By: by})
}

func (s *Service) CompleteContract(ctx context.Context, id uuid.UUID, by string) (*domain.Contract, error) {
	return s.transitionHandler.Complete(ctx, commands.CompleteContractCommand{ContractID: id, By: by})
}

func (s *Service) RenewContract(ctx context.Context, id uuid.UUID, by string, newEndDate time.Time) (*domain.Contract, error) {
	return s.transitionHandler.Renew(ctx, commands.RenewContractCommand{ContractID: id, By: by, NewEndDate: newEndDate})
}
