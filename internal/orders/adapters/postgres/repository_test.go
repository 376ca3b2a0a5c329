//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gestorhq/gestor/internal/database"
	"github.com/gestorhq/gestor/internal/orders/adapters/postgres"
	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("gestor_test"),
		testpostgres.WithUsername("test"),
		testpostgres.WithPassword("test"),
		testpostgres.BasicWaitStrategies(),
		testpostgres.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	migrationsPath := filepath.Join(findProjectRoot(t), "migrations")

	if err := database.RunMigrations(connStr, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

func insertCustomer(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO customers (id, first_name, last_name, document_type, document_number, created_at, updated_at)
		VALUES ($1, 'Ana', 'Silva', 'cpf', '12345678901', now(), now())
	`, id)
	if err != nil {
		t.Fatalf("failed to insert customer: %v", err)
	}
	return id
}

func testOrder(t *testing.T, pool *pgxpool.Pool, seq int64) domain.Order {
	t.Helper()

	order := domain.NewOrder(insertCustomer(t, pool), domain.TypeSale)
	order.SequenceNumber = seq
	order.Items = []domain.OrderItem{
		{
			ID:             uuid.New(),
			OrderID:        order.ID,
			Description:    "Banner 2x1m",
			Quantity:       2,
			UnitPrice:      decimal.RequireFromString("50.00"),
			TaxAmount:      decimal.RequireFromString("10.00"),
			DiscountAmount: decimal.RequireFromString("5.00"),
			TotalPrice:     decimal.RequireFromString("100.00"),
			CreatedAt:      time.Now().UTC(),
		},
	}
	order.CalculateTotals()
	return order
}

func TestRepositoryCreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := testOrder(t, pool, 1)
	order.Version = 1

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	got, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}

	if got.SequenceNumber != 1 {
		t.Errorf("sequence number = %d, want 1", got.SequenceNumber)
	}
	if got.Status != domain.StatusDraft {
		t.Errorf("status = %s, want draft", got.Status)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("105.00")) {
		t.Errorf("total = %s, want 105.00", got.TotalAmount)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got.Items))
	}
	if got.Items[0].Description != "Banner 2x1m" {
		t.Errorf("item description = %s", got.Items[0].Description)
	}
	if got.Version != 1 {
		t.Errorf("version = %d, want 1", got.Version)
	}
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryList(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	first := testOrder(t, pool, 1)
	first.Version = 1
	second := testOrder(t, pool, 2)
	second.Version = 1
	second.Status = domain.StatusConfirmed

	for _, order := range []domain.Order{first, second} {
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("failed to create order: %v", err)
		}
	}

	t.Run("returns all orders", func(t *testing.T) {
		orders, err := repo.List(ctx, ports.ListFilter{Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}
		if len(orders) != 2 {
			t.Errorf("expected 2 orders, got %d", len(orders))
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		status := domain.StatusConfirmed
		orders, err := repo.List(ctx, ports.ListFilter{Status: &status, Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}
		if len(orders) != 1 || orders[0].ID != second.ID {
			t.Errorf("expected only the confirmed order, got %d orders", len(orders))
		}
	})

	t.Run("filters by customer", func(t *testing.T) {
		customerID := first.CustomerID
		orders, err := repo.List(ctx, ports.ListFilter{CustomerID: &customerID, Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}
		if len(orders) != 1 || orders[0].ID != first.ID {
			t.Errorf("expected only the first customer's order, got %d orders", len(orders))
		}
	})
}

func TestRepositoryUpdate(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := testOrder(t, pool, 1)
	order.Version = 1

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	t.Run("persists status and replaces items", func(t *testing.T) {
		updated := order
		updated.Status = domain.StatusConfirmed
		updated.Items = []domain.OrderItem{
			{
				ID:          uuid.New(),
				OrderID:     order.ID,
				Description: "Adhesive vinyl",
				Quantity:    1,
				UnitPrice:   decimal.RequireFromString("30.00"),
				TotalPrice:  decimal.RequireFromString("30.00"),
				CreatedAt:   time.Now().UTC(),
			},
		}
		updated.CalculateTotals()

		if err := repo.Update(ctx, updated); err != nil {
			t.Fatalf("failed to update order: %v", err)
		}

		got, err := repo.GetByID(ctx, order.ID)
		if err != nil {
			t.Fatalf("failed to get order: %v", err)
		}
		if got.Status != domain.StatusConfirmed {
			t.Errorf("status = %s, want confirmed", got.Status)
		}
		if len(got.Items) != 1 || got.Items[0].Description != "Adhesive vinyl" {
			t.Errorf("items were not replaced: %+v", got.Items)
		}
		if got.Version != 2 {
			t.Errorf("version = %d, want 2", got.Version)
		}
	})

	t.Run("rejects stale version", func(t *testing.T) {
		stale := order
		stale.Version = 1

		err := repo.Update(ctx, stale)
		if !errors.Is(err, ports.ErrVersionConflict) {
			t.Errorf("expected ErrVersionConflict, got %v", err)
		}
	})

	t.Run("reports missing order", func(t *testing.T) {
		missing := testOrder(t, pool, 99)
		missing.Version = 1

		err := repo.Update(ctx, missing)
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSequenceNext(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	seq := postgres.NewSequence(pool, "order_seq")

	first, err := seq.Next(ctx)
	if err != nil {
		t.Fatalf("failed to get next sequence value: %v", err)
	}

	second, err := seq.Next(ctx)
	if err != nil {
		t.Fatalf("failed to get next sequence value: %v", err)
	}

	if second != first+1 {
		t.Errorf("expected consecutive values, got %d then %d", first, second)
	}
}
