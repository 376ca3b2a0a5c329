package adapters

import (
	"context"
	"time"

	"github.com/gestorhq/gestor/internal/database"
	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/gestorhq/gestor/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableRepository wraps an OrderRepository with spans and query metrics.
type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) Create(ctx context.Context, order domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Create")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.items", len(order.Items)),
		attribute.String("operation", "create"),
	)

	start := time.Now()
	err := r.repo.Create(ctx, order)
	r.metrics.RecordQuery(ctx, "create_order", time.Since(start).Seconds())

	if err != nil {
		r.metrics.RecordQueryError(ctx, "create_order")
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.GetByID")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id.String()),
		attribute.String("operation", "get_by_id"),
	)

	start := time.Now()
	order, err := r.repo.GetByID(ctx, id)
	r.metrics.RecordQuery(ctx, "get_order_by_id", time.Since(start).Seconds())

	if err != nil {
		r.metrics.RecordQueryError(ctx, "get_order_by_id")
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.List")
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("operation", "list"),
		attribute.Int("page", filter.Page),
		attribute.Int("page_size", filter.PageSize),
	}
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.CustomerID != nil {
		attrs = append(attrs, attribute.String("filter.customer_id", filter.CustomerID.String()))
	}
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	orders, err := r.repo.List(ctx, filter)
	r.metrics.RecordQuery(ctx, "list_orders", time.Since(start).Seconds())

	if err != nil {
		r.metrics.RecordQueryError(ctx, "list_orders")
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) Update(ctx context.Context, order domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Update")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID.String()),
		attribute.String("order.status", string(order.Status)),
		attribute.Int64("order.version", order.Version),
		attribute.String("operation", "update"),
	)

	start := time.Now()
	err := r.repo.Update(ctx, order)
	r.metrics.RecordQuery(ctx, "update_order", time.Since(start).Seconds())

	if err != nil {
		r.metrics.RecordQueryError(ctx, "update_order")
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
