package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/gestorhq/gestor/internal/orders/app/commands"
	"github.com/gestorhq/gestor/internal/orders/app/queries"
	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/metrics"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/google/uuid"
)

// Service bundles use cases for handling orders via the API.
type Service struct {
	repo            ports.OrderRepository
	idemStore       ports.IdempotencyStore
	createHandler   commands.CommandHandler
	completeHandler *commands.CompleteOrderCommandHandler
	cancelHandler   *commands.CancelOrderCommandHandler
	printHandler    *commands.PrintOrderCommandHandler
	getHandler      *queries.GetOrderQueryHandler
	listHandler     *queries.ListOrdersQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	orderSeq ports.NumberSequence,
	printSeq ports.NumberSequence,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	coreCreate := commands.NewCreateOrderCommandHandler(repo, events, orderSeq)
	observableCreate := commands.NewObservableCommandHandler(coreCreate, logger, metrics)

	return &Service{
		repo:            repo,
		idemStore:       idem,
		createHandler:   observableCreate,
		completeHandler: commands.NewCompleteOrderCommandHandler(repo, events),
		cancelHandler:   commands.NewCancelOrderCommandHandler(repo, events),
		printHandler:    commands.NewPrintOrderCommandHandler(repo, events, printSeq),
		getHandler:      queries.NewGetOrderQueryHandler(repo),
		listHandler:     queries.NewListOrdersQueryHandler(repo),
	}
}

// CreateOrder orchestrates order creation and event emission.
func (s *Service) CreateOrder(ctx context.Context, cmd commands.CreateOrderCommand) (*domain.Order, error) {
	return s.createHandler.Handle(ctx, cmd)
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.getHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return s.listHandler.Handle(ctx, queries.ListOrdersQuery{Filter: filter})
}

// CompleteOrder applies the completion transition.
func (s *Service) CompleteOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.completeHandler.Handle(ctx, commands.CompleteOrderCommand{OrderID: id})
}

// CancelOrder applies the cancellation transition.
func (s *Service) CancelOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.cancelHandler.Handle(ctx, commands.CancelOrderCommand{OrderID: id})
}

// PrintOrder assigns the next print batch to the order.
func (s *Service) PrintOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.printHandler.Handle(ctx, commands.PrintOrderCommand{OrderID: id})
}

// UpdateOrderDetails mutates the editable header fields of a draft-like order.
func (s *Service) UpdateOrderDetails(ctx context.Context, id uuid.UUID, deliveryDate *time.Time, notes, deliveryAddressRef, fiscalDataRef string, requiresFiscalReceipt bool) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.CanBeEdited() {
		return nil, &domain.LifecycleError{Action: "edit", Status: order.Status, Reason: "order already closed"}
	}

	order.DeliveryDate = deliveryDate
	order.Notes = notes
	order.DeliveryAddressRef = deliveryAddressRef
	order.FiscalDataRef = fiscalDataRef
	order.RequiresFiscalReceipt = requiresFiscalReceipt
	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, *order); err != nil {
		return nil, err
	}

	order.Version++
	return order, nil
}

// AddItem appends a line item and recomputes totals before persisting.
func (s *Service) AddItem(ctx context.Context, id uuid.UUID, input commands.ItemInput) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.CanBeEdited() {
		return nil, &domain.LifecycleError{Action: "edit", Status: order.Status, Reason: "order already closed"}
	}

	item := domain.OrderItem{
		ID:             uuid.New(),
		OrderID:        order.ID,
		ProductRef:     input.ProductRef,
		Description:    input.Description,
		Quantity:       input.Quantity,
		UnitPrice:      input.UnitPrice,
		TaxAmount:      input.TaxAmount,
		DiscountAmount: input.DiscountAmount,
		TotalPrice:     input.TotalPrice,
	}
	if item.TotalPrice.IsZero() {
		item.TotalPrice = item.LineTotal()
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	order.Items = append(order.Items, item)
	order.CalculateTotals()
	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, *order); err != nil {
		return nil, err
	}

	order.Version++
	return order, nil
}

// RemoveItem drops a line item and recomputes totals before persisting.
func (s *Service) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.CanBeEdited() {
		return nil, &domain.LifecycleError{Action: "edit", Status: order.Status, Reason: "order already closed"}
	}

	kept := order.Items[:0]
	found := false
	for _, item := range order.Items {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, ports.ErrNotFound
	}

	order.Items = kept
	order.CalculateTotals()
	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, *order); err != nil {
		return nil, err
	}

	order.Version++
	return order, nil
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
