package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/google/uuid"
)

type PrintOrderCommand struct {
	OrderID uuid.UUID
}

func (c PrintOrderCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return errors.New("order_id is required")
	}
	return nil
}

// PrintOrderCommandHandler assigns the next print batch number to an order
// that has not been printed yet.
type PrintOrderCommandHandler struct {
	repo     ports.OrderRepository
	events   ports.EventBus
	batchSeq ports.NumberSequence
}

func NewPrintOrderCommandHandler(repo ports.OrderRepository, events ports.EventBus, batchSeq ports.NumberSequence) *PrintOrderCommandHandler {
	return &PrintOrderCommandHandler{repo: repo, events: events, batchSeq: batchSeq}
}

func (h *PrintOrderCommandHandler) Handle(ctx context.Context, cmd PrintOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	// The batch number is reserved before the transition; a rejected print
	// leaves a gap in the counter.
	batch, err := h.batchSeq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("next print batch: %w", err)
	}

	if err := order.MarkPrinted(batch); err != nil {
		return nil, err
	}

	if err := h.repo.Update(ctx, *order); err != nil {
		return nil, err
	}
	order.Version++

	if err := h.events.PublishOrderPrinted(ctx, order.ID.String(), batch); err != nil {
		return order, fmt.Errorf("order printed but failed to publish event: %w", err)
	}

	return order, nil
}
