// Package postgres implements the identity store on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestorhq/gestor/internal/identity/domain"
	"github.com/gestorhq/gestor/internal/identity/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.Result, error) {
	query := `
		INSERT INTO identity_users (id, user_name, email, display_name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		user.ID, user.UserName, user.Email, user.DisplayName, user.Active, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Failed("user name '" + user.UserName + "' is already taken"), nil
		}
		return domain.Result{}, fmt.Errorf("insert user: %w", err)
	}

	return domain.Ok(), nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) (domain.Result, error) {
	query := `
		UPDATE identity_users
		SET user_name = $1, email = $2, display_name = $3, active = $4, updated_at = now()
		WHERE id = $5
	`

	tag, err := s.pool.Exec(ctx, query, user.UserName, user.Email, user.DisplayName, user.Active, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Failed("user name '" + user.UserName + "' is already taken"), nil
		}
		return domain.Result{}, fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.Failed("user not found"), nil
	}

	return domain.Ok(), nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) (domain.Result, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM identity_users WHERE id = $1`, id)
	if err != nil {
		return domain.Result{}, fmt.Errorf("delete user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.Failed("user not found"), nil
	}

	return domain.Ok(), nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, user_name, email, display_name, active, created_at, updated_at
		FROM identity_users
		WHERE id = $1
	`

	var user domain.User
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.UserName, &user.Email, &user.DisplayName, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	if err := s.loadMemberships(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT id, user_name, email, display_name, active, created_at, updated_at
		FROM identity_users
		ORDER BY created_at
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.UserName, &user.Email, &user.DisplayName, &user.Active, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	for i := range users {
		if err := s.loadMemberships(ctx, &users[i]); err != nil {
			return nil, err
		}
	}

	return users, nil
}

func (s *Store) CreateRole(ctx context.Context, role domain.Role) (domain.Result, error) {
	query := `INSERT INTO identity_roles (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := s.pool.Exec(ctx, query, role.ID, role.Name, role.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Failed("role '" + role.Name + "' already exists"), nil
		}
		return domain.Result{}, fmt.Errorf("insert role: %w", err)
	}

	return domain.Ok(), nil
}

func (s *Store) DeleteRole(ctx context.Context, name string) (domain.Result, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM identity_roles WHERE lower(name) = lower($1)`, name)
	if err != nil {
		return domain.Result{}, fmt.Errorf("delete role: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.Failed("role '" + name + "' not found"), nil
	}

	return domain.Ok(), nil
}

func (s *Store) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM identity_roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, nil
}

func (s *Store) AddUserToRole(ctx context.Context, userID uuid.UUID, role string) (domain.Result, error) {
	query := `
		INSERT INTO identity_user_roles (user_id, role_id)
		SELECT u.id, r.id
		FROM identity_users u, identity_roles r
		WHERE u.id = $1 AND lower(r.name) = lower($2)
	`

	tag, err := s.pool.Exec(ctx, query, userID, role)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Failed("user is already in role '" + role + "'"), nil
		}
		return domain.Result{}, fmt.Errorf("insert user role: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.Failed("user or role not found"), nil
	}

	return domain.Ok(), nil
}

func (s *Store) RemoveUserFromRole(ctx context.Context, userID uuid.UUID, role string) (domain.Result, error) {
	query := `
		DELETE FROM identity_user_roles
		WHERE user_id = $1
		  AND role_id = (SELECT id FROM identity_roles WHERE lower(name) = lower($2))
	`

	tag, err := s.pool.Exec(ctx, query, userID, role)
	if err != nil {
		return domain.Result{}, fmt.Errorf("delete user role: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.Failed("user is not in role '" + role + "'"), nil
	}

	return domain.Ok(), nil
}

func (s *Store) AddClaim(ctx context.Context, userID uuid.UUID, claim domain.Claim) (domain.Result, error) {
	query := `
		INSERT INTO identity_user_claims (user_id, claim_type, claim_value)
		SELECT id, $2, $3 FROM identity_users WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, userID, claim.Type, claim.Value)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Failed("claim already present"), nil
		}
		return domain.Result{}, fmt.Errorf("insert claim: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.Failed("user not found"), nil
	}

	return domain.Ok(), nil
}

func (s *Store) RemoveClaim(ctx context.Context, userID uuid.UUID, claim domain.Claim) (domain.Result, error) {
	query := `
		DELETE FROM identity_user_claims
		WHERE user_id = $1 AND claim_type = $2 AND claim_value = $3
	`

	tag, err := s.pool.Exec(ctx, query, userID, claim.Type, claim.Value)
	if err != nil {
		return domain.Result{}, fmt.Errorf("delete claim: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.Failed("claim not present"), nil
	}

	return domain.Ok(), nil
}

func (s *Store) loadMemberships(ctx context.Context, user *domain.User) error {
	roleRows, err := s.pool.Query(ctx, `
		SELECT r.name
		FROM identity_roles r
		JOIN identity_user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`, user.ID)
	if err != nil {
		return fmt.Errorf("select user roles: %w", err)
	}
	defer roleRows.Close()

	for roleRows.Next() {
		var name string
		if err := roleRows.Scan(&name); err != nil {
			return fmt.Errorf("scan user role: %w", err)
		}
		user.Roles = append(user.Roles, name)
	}
	if err := roleRows.Err(); err != nil {
		return fmt.Errorf("iterate user roles: %w", err)
	}

	claimRows, err := s.pool.Query(ctx, `
		SELECT claim_type, claim_value
		FROM identity_user_claims
		WHERE user_id = $1
		ORDER BY claim_type, claim_value
	`, user.ID)
	if err != nil {
		return fmt.Errorf("select user claims: %w", err)
	}
	defer claimRows.Close()

	for claimRows.Next() {
		var claim domain.Claim
		if err := claimRows.Scan(&claim.Type, &claim.Value); err != nil {
			return fmt.Errorf("scan user claim: %w", err)
		}
		user.Claims = append(user.Claims, claim)
	}

	return claimRows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
