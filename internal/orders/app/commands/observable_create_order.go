package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/metrics"
	"github.com/gestorhq/gestor/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "CreateOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordOrderCreationDuration(ctx, duration)
		o.metrics.RecordOrderCreated(ctx, success)
	}()

	o.logger.InfoContext(ctx, "creating order",
		"customer_id", cmd.CustomerID,
		"type", cmd.Type,
		"items", len(cmd.Items),
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to create order",
			"error", err,
			"customer_id", cmd.CustomerID,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID.String()),
		attribute.Int64("order.sequence_number", order.SequenceNumber),
		attribute.String("order.type", string(order.Type)),
		attribute.String("order.total_amount", order.TotalAmount.String()),
		attribute.String("order.status", string(order.Status)),
	)

	o.logger.InfoContext(ctx, "order created successfully",
		"order_id", order.ID,
		"sequence_number", order.SequenceNumber,
		"total_amount", order.TotalAmount,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}
