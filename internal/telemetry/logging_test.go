package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestNewLoggerWithWriter(t *testing.T) {
	t.Run("emits JSON records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

		logger.Info("order created", "order_id", "abc", "total", 42.5)

		entry := logLine(t, &buf)
		if entry["msg"] != "order created" {
			t.Errorf("msg = %v", entry["msg"])
		}
		if entry["order_id"] != "abc" {
			t.Errorf("order_id = %v", entry["order_id"])
		}
	})

	t.Run("respects the level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, slog.LevelWarn)

		logger.Info("dropped")
		if buf.Len() != 0 {
			t.Errorf("expected info record to be dropped, got %s", buf.String())
		}

		logger.Warn("kept")
		if buf.Len() == 0 {
			t.Error("expected warn record to be emitted")
		}
	})

	t.Run("stamps trace and span IDs from the context", func(t *testing.T) {
		exp := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
		otel.SetTracerProvider(tp)
		t.Cleanup(func() { otel.SetTracerProvider(nil) })

		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

		ctx, span := StartSpan(context.Background(), "op")
		logger.InfoContext(ctx, "within span")
		span.End()

		entry := logLine(t, &buf)
		if entry["trace_id"] != span.SpanContext().TraceID().String() {
			t.Errorf("trace_id = %v", entry["trace_id"])
		}
		if entry["span_id"] != span.SpanContext().SpanID().String() {
			t.Errorf("span_id = %v", entry["span_id"])
		}
	})

	t.Run("omits trace fields without an active span", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

		logger.InfoContext(context.Background(), "no span")

		entry := logLine(t, &buf)
		if _, ok := entry["trace_id"]; ok {
			t.Error("trace_id should be absent")
		}
		if _, ok := entry["span_id"]; ok {
			t.Error("span_id should be absent")
		}
	})

	t.Run("With carries attributes through", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, slog.LevelInfo).With("component", "orders")

		logger.Info("hello")

		entry := logLine(t, &buf)
		if entry["component"] != "orders" {
			t.Errorf("component = %v", entry["component"])
		}
	})

	t.Run("WithGroup nests attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, slog.LevelInfo).WithGroup("http")

		logger.Info("request", "method", "GET", "path", "/v1/orders")

		entry := logLine(t, &buf)
		group, ok := entry["http"].(map[string]any)
		if !ok {
			t.Fatalf("expected http group, got %v", entry)
		}
		if group["path"] != "/v1/orders" {
			t.Errorf("path = %v", group["path"])
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
