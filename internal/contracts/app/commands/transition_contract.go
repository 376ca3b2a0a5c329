package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/gestorhq/gestor/internal/contracts/domain"
	"github.com/gestorhq/gestor/internal/contracts/ports"
	"github.com/google/uuid"
)

// ConfirmContractCommand activates a draft contract.
type ConfirmContractCommand struct {
	ContractID uuid.UUID
	By         string
}

// SignContractCommand records the customer signature.
type SignContractCommand struct {
	ContractID uuid.UUID
	By         string
	SignedDate *time.Time
}

// SuspendContractCommand halts an open contract.
type SuspendContractCommand struct {
	ContractID uuid.UUID
	By         string
}

// CancelContractCommand cancels a contract from any state.
type CancelContractCommand struct {
	ContractID uuid.UUID
	By         string
}

// CompleteContractCommand closes out a contract.
type CompleteContractCommand struct {
	ContractID uuid.UUID
	By         string
}

// RenewContractCommand extends the contract to a new end date.
type RenewContractCommand struct {
	ContractID uuid.UUID
	By         string
	NewEndDate time.Time
}

// TransitionContractCommandHandler applies guarded lifecycle transitions,
// persisting the result and emitting the relevant events.
type TransitionContractCommandHandler struct {
	repo   ports.ContractRepository
	events ports.EventBus
	logger *slog.Logger
}

func NewTransitionContractCommandHandler(repo ports.ContractRepository, events ports.EventBus, logger *slog.Logger) *TransitionContractCommandHandler {
	return &TransitionContractCommandHandler{repo: repo, events: events, logger: logger}
}

func (h *TransitionContractCommandHandler) Confirm(ctx context.Context, cmd ConfirmContractCommand) (*domain.Contract, error) {
	return h.apply(ctx, cmd.ContractID, "confirm", func(contract *domain.Contract) error {
		return contract.Confirm(cmd.By)
	})
}

// Sign persists the contract even when the guard rejects the transition:
// the domain records the signature fields regardless, and dropping them
// on the floor would hide that from reads.
func (h *TransitionContractCommandHandler) Sign(ctx context.Context, cmd SignContractCommand) (*domain.Contract, error) {
	contract, err := h.repo.GetByID(ctx, cmd.ContractID)
	if err != nil {
		return nil, err
	}

	signErr := contract.Sign(cmd.By, cmd.SignedDate)

	if err := h.repo.Update(ctx, *contract); err != nil {
		return nil, err
	}

	if signErr != nil {
		return nil, signErr
	}

	if err := h.events.PublishContractSigned(ctx, contract.ID.String()); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish contract signed event",
			"contract_id", contract.ID,
			"error", err,
		)
	}

	return contract, nil
}

func (h *TransitionContractCommandHandler) Suspend(ctx context.Context, cmd SuspendContractCommand) (*domain.Contract, error) {
	return h.apply(ctx, cmd.ContractID, "suspend", func(contract *domain.Contract) error {
		return contract.Suspend(cmd.By)
	})
}

func (h *TransitionContractCommandHandler) Cancel(ctx context.Context, cmd CancelContractCommand) (*domain.Contract, error) {
	contract, err := h.apply(ctx, cmd.ContractID, "cancel", func(contract *domain.Contract) error {
		return contract.Cancel(cmd.By)
	})
	if err != nil {
		return nil, err
	}

	if err := h.events.PublishContractCancelled(ctx, contract.ID.String()); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish contract cancelled event",
			"contract_id", contract.ID,
			"error", err,
		)
	}

	return contract, nil
}

func (h *TransitionContractCommandHandler) Complete(ctx context.Context, cmd CompleteContractCommand) (*domain.Contract, error) {
	return h.apply(ctx, cmd.ContractID, "complete", func(contract *domain.Contract) error {
		return contract.Complete(cmd.By)
	})
}

func (h *TransitionContractCommandHandler) Renew(ctx context.Context, cmd RenewContractCommand) (*domain.Contract, error) {
	return h.apply(ctx, cmd.ContractID, "renew", func(contract *domain.Contract) error {
		return contract.Renew(cmd.NewEndDate, cmd.By)
	})
}

func (h *TransitionContractCommandHandler) apply(ctx context.Context, id uuid.UUID, action string, transition func(*domain.Contract) error) (*domain.Contract, error) {
	contract, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := transition(contract); err != nil {
		return nil, err
	}

	if err := h.repo.Update(ctx, *contract); err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "contract transition applied",
		"contract_id", contract.ID,
		"action", action,
		"status", contract.Status,
	)

	return contract, nil
}
