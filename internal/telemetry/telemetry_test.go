package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		ServiceName:    "gestor-test",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		SampleRate:     1.0,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.ServiceName = "" },
			wantErr: ErrMissingServiceName,
		},
		{
			name:    "missing service version",
			mutate:  func(c *Config) { c.ServiceVersion = "" },
			wantErr: ErrMissingServiceVersion,
		},
		{
			name:    "sample rate below zero",
			mutate:  func(c *Config) { c.SampleRate = -0.1 },
			wantErr: ErrInvalidSampleRate,
		},
		{
			name:    "sample rate above one",
			mutate:  func(c *Config) { c.SampleRate = 1.1 },
			wantErr: ErrInvalidSampleRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() failed: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want wrapped ErrInvalidConfig", err)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	shutdown := func(t *testing.T, tel *Telemetry) {
		t.Helper()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() failed: %v", err)
		}
	}

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.ServiceName = ""

		_, err := Initialize(context.Background(), cfg)
		if !errors.Is(err, ErrMissingServiceName) {
			t.Errorf("Initialize() = %v, want ErrMissingServiceName", err)
		}
	})

	t.Run("tracing only", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableTracing = true

		tel, err := Initialize(context.Background(), cfg, WithTraceExporter(NewNoopTraceExporter()))
		if err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}
		defer shutdown(t, tel)

		if tel.TracerProvider() == nil {
			t.Error("expected tracer provider")
		}
		if tel.MeterProvider() != nil {
			t.Error("expected no meter provider")
		}
	})

	t.Run("metrics only", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableMetrics = true

		tel, err := Initialize(context.Background(), cfg, WithMetricExporter(NewNoopMetricExporter()))
		if err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}
		defer shutdown(t, tel)

		if tel.MeterProvider() == nil {
			t.Error("expected meter provider")
		}
		if tel.TracerProvider() != nil {
			t.Error("expected no tracer provider")
		}
	})

	t.Run("both disabled still succeeds", func(t *testing.T) {
		tel, err := Initialize(context.Background(), testConfig())
		if err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}
		defer shutdown(t, tel)

		if tel.TracerProvider() != nil || tel.MeterProvider() != nil {
			t.Error("expected no providers when both signals are disabled")
		}
	})
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{"zero rate never samples", 0.0, "AlwaysOffSampler"},
		{"full rate always samples", 1.0, "AlwaysOnSampler"},
		{"partial rate is parent based", 0.5, "ParentBased{root:TraceIDRatioBased{0.5},remoteParentSampled:AlwaysOnSampler,remoteParentNotSampled:AlwaysOffSampler,localParentSampled:AlwaysOnSampler,localParentNotSampled:AlwaysOffSampler}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := createSampler(tt.rate).Description(); got != tt.want {
				t.Errorf("createSampler(%v) = %s, want %s", tt.rate, got, tt.want)
			}
		})
	}
}
