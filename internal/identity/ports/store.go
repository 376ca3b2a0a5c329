package ports

import (
	"context"
	"errors"

	"github.com/gestorhq/gestor/internal/identity/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned by reads when the requested principal does not exist.
var ErrNotFound = errors.New("user not found")

// IdentityStore manages principals, roles and claims. Mutating operations
// report their outcome through domain.Result rather than an error: failures
// here are business answers (duplicate name, unknown principal), not faults.
type IdentityStore interface {
	CreateUser(ctx context.Context, user domain.User) (domain.Result, error)
	UpdateUser(ctx context.Context, user domain.User) (domain.Result, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (domain.Result, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	CreateRole(ctx context.Context, role domain.Role) (domain.Result, error)
	DeleteRole(ctx context.Context, name string) (domain.Result, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)

	AddUserToRole(ctx context.Context, userID uuid.UUID, role string) (domain.Result, error)
	RemoveUserFromRole(ctx context.Context, userID uuid.UUID, role string) (domain.Result, error)
	AddClaim(ctx context.Context, userID uuid.UUID, claim domain.Claim) (domain.Result, error)
	RemoveClaim(ctx context.Context, userID uuid.UUID, claim domain.Claim) (domain.Result, error)
}
