// Package postgres implements the customer repository on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestorhq/gestor/internal/customers/domain"
	"github.com/gestorhq/gestor/internal/customers/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerColumns = `id, first_name, last_name, email, phone, document_type, document_number, external_contact_ref, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, customer domain.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		customer.ID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.DocumentType,
		customer.DocumentNumber,
		customer.ExternalContactRef,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select customer: %w", err)
	}

	return customer, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE ($1 = '' OR first_name || ' ' || last_name ILIKE '%' || $1 || '%' OR document_number ILIKE '%' || $1 || '%')
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	rows, err := r.pool.Query(ctx, query, filter.Search, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

func (r *Repository) Update(ctx context.Context, customer domain.Customer) error {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
		    document_type = $5, document_number = $6, external_contact_ref = $7, updated_at = $8
		WHERE id = $9
	`

	tag, err := r.pool.Exec(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.DocumentType,
		customer.DocumentNumber,
		customer.ExternalContactRef,
		customer.UpdatedAt,
		customer.ID,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var customer domain.Customer
	err := row.Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&customer.DocumentType,
		&customer.DocumentNumber,
		&customer.ExternalContactRef,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
