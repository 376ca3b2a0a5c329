package events

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	publishLatency metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.publishLatency, err = meter.Float64Histogram(
		"event_publish_latency_seconds",
		metric.WithDescription("Event publish latency by topic"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create event_publish_latency histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordPublish(ctx context.Context, topic string, durationSeconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.publishLatency.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("status", status),
	))
}
