package adapters

import (
	"context"
	"time"

	"github.com/gestorhq/gestor/internal/events"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/gestorhq/gestor/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableEventBus wraps an EventBus with spans and publish metrics.
type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *events.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *events.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	return e.publish(ctx, "order.created", orderID, nil, func(ctx context.Context) error {
		return e.bus.PublishOrderCreated(ctx, orderID)
	})
}

func (e *ObservableEventBus) PublishOrderCompleted(ctx context.Context, orderID string) error {
	return e.publish(ctx, "order.completed", orderID, nil, func(ctx context.Context) error {
		return e.bus.PublishOrderCompleted(ctx, orderID)
	})
}

func (e *ObservableEventBus) PublishOrderCancelled(ctx context.Context, orderID string) error {
	return e.publish(ctx, "order.cancelled", orderID, nil, func(ctx context.Context) error {
		return e.bus.PublishOrderCancelled(ctx, orderID)
	})
}

func (e *ObservableEventBus) PublishOrderPrinted(ctx context.Context, orderID string, batch int64) error {
	extra := []attribute.KeyValue{attribute.Int64("order.print_batch", batch)}
	return e.publish(ctx, "order.printed", orderID, extra, func(ctx context.Context) error {
		return e.bus.PublishOrderPrinted(ctx, orderID, batch)
	})
}

func (e *ObservableEventBus) publish(ctx context.Context, topic, orderID string, extra []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish")
	defer span.End()

	attrs := append([]attribute.KeyValue{
		attribute.String("order.id", orderID),
		attribute.String("event.type", topic),
		attribute.String("topic", topic),
	}, extra...)
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	err := fn(ctx)
	e.metrics.RecordPublish(ctx, topic, time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
