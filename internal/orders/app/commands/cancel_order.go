package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/google/uuid"
)

type CancelOrderCommand struct {
	OrderID uuid.UUID
}

func (c CancelOrderCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return errors.New("order_id is required")
	}
	return nil
}

type CancelOrderCommandHandler struct {
	repo   ports.OrderRepository
	events ports.EventBus
}

func NewCancelOrderCommandHandler(repo ports.OrderRepository, events ports.EventBus) *CancelOrderCommandHandler {
	return &CancelOrderCommandHandler{repo: repo, events: events}
}

func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(); err != nil {
		return nil, err
	}

	if err := h.repo.Update(ctx, *order); err != nil {
		return nil, err
	}
	order.Version++

	if err := h.events.PublishOrderCancelled(ctx, order.ID.String()); err != nil {
		return order, fmt.Errorf("order cancelled but failed to publish event: %w", err)
	}

	return order, nil
}
