package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `
	id, sequence_number, order_date, delivery_date, customer_id, status, type,
	subtotal, tax_amount, discount_amount, total_amount, notes,
	delivery_address_ref, fiscal_data_ref, requires_fiscal_receipt,
	print_status, print_batch, version, created_at, updated_at
`

func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 1, $18, $19)
	`

	_, err = tx.Exec(ctx, query,
		order.ID,
		order.SequenceNumber,
		order.OrderDate,
		order.DeliveryDate,
		order.CustomerID,
		order.Status,
		order.Type,
		order.Subtotal,
		order.TaxAmount,
		order.DiscountAmount,
		order.TotalAmount,
		order.Notes,
		order.DeliveryAddressRef,
		order.FiscalDataRef,
		order.RequiresFiscalReceipt,
		order.PrintStatus,
		order.PrintBatch,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert order: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.SequenceNumber,
		&order.OrderDate,
		&order.DeliveryDate,
		&order.CustomerID,
		&order.Status,
		&order.Type,
		&order.Subtotal,
		&order.TaxAmount,
		&order.DiscountAmount,
		&order.TotalAmount,
		&order.Notes,
		&order.DeliveryAddressRef,
		&order.FiscalDataRef,
		&order.RequiresFiscalReceipt,
		&order.PrintStatus,
		&order.PrintBatch,
		&order.Version,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::uuid IS NULL OR customer_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, statusFilter, filter.CustomerID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.SequenceNumber,
			&order.OrderDate,
			&order.DeliveryDate,
			&order.CustomerID,
			&order.Status,
			&order.Type,
			&order.Subtotal,
			&order.TaxAmount,
			&order.DiscountAmount,
			&order.TotalAmount,
			&order.Notes,
			&order.DeliveryAddressRef,
			&order.FiscalDataRef,
			&order.RequiresFiscalReceipt,
			&order.PrintStatus,
			&order.PrintBatch,
			&order.Version,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// Update rewrites the order row and its items under the version check.
// Items are replaced wholesale; the order row guards the whole aggregate.
func (r *Repository) Update(ctx context.Context, order domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE orders
		SET delivery_date = $1, status = $2, subtotal = $3, tax_amount = $4,
		    discount_amount = $5, total_amount = $6, notes = $7,
		    delivery_address_ref = $8, fiscal_data_ref = $9,
		    requires_fiscal_receipt = $10, print_status = $11, print_batch = $12,
		    version = version + 1, updated_at = $13
		WHERE id = $14 AND version = $15
	`

	result, err := tx.Exec(ctx, query,
		order.DeliveryDate,
		order.Status,
		order.Subtotal,
		order.TaxAmount,
		order.DiscountAmount,
		order.TotalAmount,
		order.Notes,
		order.DeliveryAddressRef,
		order.FiscalDataRef,
		order.RequiresFiscalReceipt,
		order.PrintStatus,
		order.PrintBatch,
		time.Now().UTC(),
		order.ID,
		order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing row from a stale version.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, order.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check order existence: %w", err)
		}
		if !exists {
			return ports.ErrNotFound
		}
		return ports.ErrVersionConflict
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update order: %w", err)
	}
	return nil
}

func (r *Repository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_ref, description, quantity,
		       unit_price, tax_amount, discount_amount, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductRef,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
			&item.TaxAmount,
			&item.DiscountAmount,
			&item.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []domain.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_ref, description, quantity,
		                         unit_price, tax_amount, discount_amount, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, item := range items {
		if _, err := tx.Exec(ctx, query,
			item.ID,
			orderID,
			item.ProductRef,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.TaxAmount,
			item.DiscountAmount,
			item.TotalPrice,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// SequenceNumbers hands out values from a named postgres sequence.
type SequenceNumbers struct {
	pool *pgxpool.Pool
	name string
}

// NewSequence constructs a sequence backed by the named postgres sequence.
func NewSequence(pool *pgxpool.Pool, name string) *SequenceNumbers {
	return &SequenceNumbers{pool: pool, name: name}
}

// Next returns the next value of the sequence.
func (s *SequenceNumbers) Next(ctx context.Context) (int64, error) {
	var next int64
	if err := s.pool.QueryRow(ctx, `SELECT nextval($1)`, s.name).Scan(&next); err != nil {
		return 0, fmt.Errorf("nextval %s: %w", s.name, err)
	}
	return next, nil
}
