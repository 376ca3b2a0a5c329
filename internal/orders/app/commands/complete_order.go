package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/google/uuid"
)

type CompleteOrderCommand struct {
	OrderID uuid.UUID
}

func (c CompleteOrderCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return errors.New("order_id is required")
	}
	return nil
}

// CompleteOrderCommandHandler loads the order, applies the completion
// transition and persists it under the optimistic concurrency check.
type CompleteOrderCommandHandler struct {
	repo   ports.OrderRepository
	events ports.EventBus
}

func NewCompleteOrderCommandHandler(repo ports.OrderRepository, events ports.EventBus) *CompleteOrderCommandHandler {
	return &CompleteOrderCommandHandler{repo: repo, events: events}
}

func (h *CompleteOrderCommandHandler) Handle(ctx context.Context, cmd CompleteOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.Complete(); err != nil {
		return nil, err
	}

	if err := h.repo.Update(ctx, *order); err != nil {
		return nil, err
	}
	order.Version++

	if err := h.events.PublishOrderCompleted(ctx, order.ID.String()); err != nil {
		return order, fmt.Errorf("order completed but failed to publish event: %w", err)
	}

	return order, nil
}
