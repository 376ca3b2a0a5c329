package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one requested order line. TotalPrice defaults to
// quantity times unit price when left zero.
type ItemInput struct {
	ProductRef     string          `json:"product_ref,omitempty"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`
}

type CreateOrderCommand struct {
	CustomerID            uuid.UUID
	Type                  domain.OrderType
	DeliveryDate          *time.Time
	Notes                 string
	DeliveryAddressRef    string
	FiscalDataRef         string
	RequiresFiscalReceipt bool
	Items                 []ItemInput
}

func (c CreateOrderCommand) Validate() error {
	if c.CustomerID == uuid.Nil {
		return errors.New("customer_id is required")
	}
	switch c.Type {
	case domain.TypeSale, domain.TypeProduction, domain.TypeService:
	default:
		return fmt.Errorf("unknown order type %q", c.Type)
	}
	for i, item := range c.Items {
		if item.Quantity < 0 {
			return fmt.Errorf("item %d: quantity must not be negative", i)
		}
		if item.UnitPrice.IsNegative() || item.TaxAmount.IsNegative() || item.DiscountAmount.IsNegative() {
			return fmt.Errorf("item %d: monetary fields must not be negative", i)
		}
	}
	return nil
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type CreateOrderCommandHandler struct {
	repo     ports.OrderRepository
	events   ports.EventBus
	sequence ports.NumberSequence
}

func NewCreateOrderCommandHandler(
	repo ports.OrderRepository,
	events ports.EventBus,
	sequence ports.NumberSequence,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		repo:     repo,
		events:   events,
		sequence: sequence,
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	seq, err := h.sequence.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("next order sequence: %w", err)
	}

	order := domain.NewOrder(cmd.CustomerID, cmd.Type)
	order.SequenceNumber = seq
	order.DeliveryDate = cmd.DeliveryDate
	order.Notes = cmd.Notes
	order.DeliveryAddressRef = cmd.DeliveryAddressRef
	order.FiscalDataRef = cmd.FiscalDataRef
	order.RequiresFiscalReceipt = cmd.RequiresFiscalReceipt
	order.Items = buildItems(order.ID, cmd.Items)
	order.CalculateTotals()

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderCreated(ctx, order.ID.String()); err != nil {
		return &order, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &order, nil
}

func buildItems(orderID uuid.UUID, inputs []ItemInput) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		item := domain.OrderItem{
			ID:             uuid.New(),
			OrderID:        orderID,
			ProductRef:     in.ProductRef,
			Description:    in.Description,
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
			TaxAmount:      in.TaxAmount,
			DiscountAmount: in.DiscountAmount,
			TotalPrice:     in.TotalPrice,
		}
		if item.TotalPrice.IsZero() {
			item.TotalPrice = item.LineTotal()
		}
		items = append(items, item)
	}
	return items
}
