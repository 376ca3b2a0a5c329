package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gestorhq/gestor/internal/config"
	contractshttp "github.com/gestorhq/gestor/internal/contracts/adapters/http"
	contractspostgres "github.com/gestorhq/gestor/internal/contracts/adapters/postgres"
	contractsapp "github.com/gestorhq/gestor/internal/contracts/app"
	customershttp "github.com/gestorhq/gestor/internal/customers/adapters/http"
	customerspostgres "github.com/gestorhq/gestor/internal/customers/adapters/postgres"
	customersapp "github.com/gestorhq/gestor/internal/customers/app"
	"github.com/gestorhq/gestor/internal/database"
	"github.com/gestorhq/gestor/internal/events"
	"github.com/gestorhq/gestor/internal/httpapi"
	idempostgres "github.com/gestorhq/gestor/internal/idempotency/postgres"
	identityhttp "github.com/gestorhq/gestor/internal/identity/adapters/http"
	identitypostgres "github.com/gestorhq/gestor/internal/identity/adapters/postgres"
	ordersadapters "github.com/gestorhq/gestor/internal/orders/adapters"
	ordershttp "github.com/gestorhq/gestor/internal/orders/adapters/http"
	orderspostgres "github.com/gestorhq/gestor/internal/orders/adapters/postgres"
	ordersapp "github.com/gestorhq/gestor/internal/orders/app"
	ordersmetrics "github.com/gestorhq/gestor/internal/orders/metrics"
	"github.com/gestorhq/gestor/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const meterName = "github.com/gestorhq/gestor"

func main() {
	root := &cobra.Command{
		Use:           "gestor-api",
		Short:         "Order, contract and customer management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations and exit",
			RunE: func(_ *cobra.Command, _ []string) error {
				return runMigrate()
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func runMigrate() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		return err
	}

	slog.Info("migrations applied", "path", cfg.Database.MigrationsPath)
	return nil
}

func runServe(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	handler, err := buildHandler(pool, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	})

	return group.Wait()
}

func buildHandler(pool *pgxpool.Pool, logger *slog.Logger) (http.Handler, error) {
	meter := otel.Meter(meterName)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create database metrics: %w", err)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create order metrics: %w", err)
	}
	eventMetrics, err := events.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create event metrics: %w", err)
	}
	httpMetrics, err := httpapi.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create http metrics: %w", err)
	}

	ordersRepo := ordersadapters.NewObservableRepository(orderspostgres.NewRepository(pool), dbMetrics)
	orderBus := ordersadapters.NewObservableEventBus(events.NewNoopOrderBus(), eventMetrics)
	ordersService := ordersapp.NewService(
		ordersRepo,
		orderBus,
		idempostgres.NewStore(pool),
		orderspostgres.NewSequence(pool, "order_seq"),
		orderspostgres.NewSequence(pool, "print_batch_seq"),
		logger,
		orderMetrics,
	)

	customersService := customersapp.NewService(customerspostgres.NewRepository(pool), logger)
	contractsService := contractsapp.NewService(contractspostgres.NewRepository(pool), events.NewNoopContractBus(), logger)
	identityStore := identitypostgres.NewStore(pool)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	ordershttp.NewHandler(ordersService).Register(mux)
	customershttp.NewHandler(customersService).Register(mux)
	contractshttp.NewHandler(contractsService).Register(mux)
	identityhttp.NewHandler(identityStore).Register(mux)

	handler := httpapi.WithMetrics(mux, httpMetrics)
	handler = httpapi.WithLogging(handler, logger)
	handler = httpapi.WithRecovery(handler, logger)
	return handler, nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
