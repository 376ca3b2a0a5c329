// Package postgres implements the contract repository on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestorhq/gestor/internal/contracts/domain"
	"github.com/gestorhq/gestor/internal/contracts/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contractColumns = `id, contract_number, title, description, start_date, end_date, total_value, status, customer_id, order_id, terms, signed_date, signed_by_customer, notes, updated_by, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, contract domain.Contract) error {
	query := `
		INSERT INTO contracts (` + contractColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.pool.Exec(ctx, query,
		contract.ID,
		contract.ContractNumber,
		contract.Title,
		contract.Description,
		contract.StartDate,
		contract.EndDate,
		contract.TotalValue,
		contract.Status,
		contract.CustomerID,
		contract.OrderID,
		contract.Terms,
		contract.SignedDate,
		contract.SignedByCustomer,
		contract.Notes,
		contract.UpdatedBy,
		contract.CreatedAt,
		contract.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contract number %s: %w", contract.ContractNumber, ports.ErrDuplicateNumber)
		}
		return fmt.Errorf("insert contract: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`

	contract, err := scanContract(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select contract: %w", err)
	}

	return contract, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE ($1 = '' OR status = $1)
		  AND ($2::uuid IS NULL OR customer_id = $2)
		  AND (NOT $3::bool OR (
		      status IN ('active', 'signed', 'renewed')
		      AND end_date IS NOT NULL
		      AND end_date > now()
		      AND end_date <= now() + interval '30 days'
		  ))
		ORDER BY created_at
		LIMIT $4 OFFSET $5
	`

	status := ""
	if filter.Status != nil {
		status = string(*filter.Status)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	rows, err := r.pool.Query(ctx, query, status, filter.CustomerID, filter.NearExpiration, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("select contracts: %w", err)
	}
	defer rows.Close()

	contracts := []domain.Contract{}
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, *contract)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}

	return contracts, nil
}

func (r *Repository) Update(ctx context.Context, contract domain.Contract) error {
	query := `
		UPDATE contracts
		SET title = $1, description = $2, start_date = $3, end_date = $4,
		    total_value = $5, status = $6, order_id = $7, terms = $8,
		    signed_date = $9, signed_by_customer = $10, notes = $11,
		    updated_by = $12, updated_at = $13
		WHERE id = $14
	`

	tag, err := r.pool.Exec(ctx, query,
		contract.Title,
		contract.Description,
		contract.StartDate,
		contract.EndDate,
		contract.TotalValue,
		contract.Status,
		contract.OrderID,
		contract.Terms,
		contract.SignedDate,
		contract.SignedByCustomer,
		contract.Notes,
		contract.UpdatedBy,
		contract.UpdatedAt,
		contract.ID,
	)
	if err != nil {
		return fmt.Errorf("update contract: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func scanContract(row pgx.Row) (*domain.Contract, error) {
	var contract domain.Contract
	err := row.Scan(
		&contract.ID,
		&contract.ContractNumber,
		&contract.Title,
		&contract.Description,
		&contract.StartDate,
		&contract.EndDate,
		&contract.TotalValue,
		&contract.Status,
		&contract.CustomerID,
		&contract.OrderID,
		&contract.Terms,
		&contract.SignedDate,
		&contract.SignedByCustomer,
		&contract.Notes,
		&contract.UpdatedBy,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &contract, nil
}
