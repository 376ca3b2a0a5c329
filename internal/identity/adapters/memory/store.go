// Package memory provides an in-process identity store for tests and
// local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gestorhq/gestor/internal/identity/domain"
	"github.com/gestorhq/gestor/internal/identity/ports"
	"github.com/google/uuid"
)

type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
	roles map[string]domain.Role
}

func NewStore() *Store {
	return &Store{
		users: make(map[uuid.UUID]domain.User),
		roles: make(map[string]domain.Role),
	}
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByName(user.UserName) != nil {
		return domain.Failed("user name '" + user.UserName + "' is already taken"), nil
	}

	s.users[user.ID] = user
	return domain.Ok(), nil
}

func (s *Store) UpdateUser(_ context.Context, user domain.User) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return domain.Failed("user not found"), nil
	}

	if existing := s.findUserByName(user.UserName); existing != nil && existing.ID != user.ID {
		return domain.Failed("user name '" + user.UserName + "' is already taken"), nil
	}

	user.Roles = current.Roles
	user.Claims = current.Claims
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = user
	return domain.Ok(), nil
}

func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return domain.Failed("user not found"), nil
	}

	delete(s.users, id)
	return domain.Ok(), nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *cloneUser(user))
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

func (s *Store) CreateRole(_ context.Context, role domain.Role) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(role.Name)
	if _, ok := s.roles[key]; ok {
		return domain.Failed("role '" + role.Name + "' already exists"), nil
	}

	s.roles[key] = role
	return domain.Ok(), nil
}

func (s *Store) DeleteRole(_ context.Context, name string) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := s.roles[key]; !ok {
		return domain.Failed("role '" + name + "' not found"), nil
	}

	delete(s.roles, key)
	for id, user := range s.users {
		user.Roles = removeString(user.Roles, name)
		s.users[id] = user
	}

	return domain.Ok(), nil
}

func (s *Store) ListRoles(_ context.Context) ([]domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := make([]domain.Role, 0, len(s.roles))
	for _, role := range s.roles {
		roles = append(roles, role)
	}

	sort.Slice(roles, func(i, j int) bool {
		return roles[i].Name < roles[j].Name
	})

	return roles, nil
}

func (s *Store) AddUserToRole(_ context.Context, userID uuid.UUID, role string) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.Failed("user not found"), nil
	}
	if _, ok := s.roles[strings.ToLower(role)]; !ok {
		return domain.Failed("role '" + role + "' not found"), nil
	}
	if containsString(user.Roles, role) {
		return domain.Failed("user is already in role '" + role + "'"), nil
	}

	user.Roles = append(user.Roles, role)
	s.users[userID] = user
	return domain.Ok(), nil
}

func (s *Store) RemoveUserFromRole(_ context.Context, userID uuid.UUID, role string) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.Failed("user not found"), nil
	}
	if !containsString(user.Roles, role) {
		return domain.Failed("user is not in role '" + role + "'"), nil
	}

	user.Roles = removeString(user.Roles, role)
	s.users[userID] = user
	return domain.Ok(), nil
}

func (s *Store) AddClaim(_ context.Context, userID uuid.UUID, claim domain.Claim) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.Failed("user not found"), nil
	}
	for _, existing := range user.Claims {
		if existing == claim {
			return domain.Failed("claim already present"), nil
		}
	}

	user.Claims = append(user.Claims, claim)
	s.users[userID] = user
	return domain.Ok(), nil
}

func (s *Store) RemoveClaim(_ context.Context, userID uuid.UUID, claim domain.Claim) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.Failed("user not found"), nil
	}

	claims := user.Claims[:0:0]
	removed := false
	for _, existing := range user.Claims {
		if existing == claim {
			removed = true
			continue
		}
		claims = append(claims, existing)
	}
	if !removed {
		return domain.Failed("claim not present"), nil
	}

	user.Claims = claims
	s.users[userID] = user
	return domain.Ok(), nil
}

func (s *Store) findUserByName(name string) *domain.User {
	for _, user := range s.users {
		if strings.EqualFold(user.UserName, name) {
			found := user
			return &found
		}
	}
	return nil
}

func cloneUser(user domain.User) *domain.User {
	clone := user
	clone.Roles = append([]string(nil), user.Roles...)
	clone.Claims = append([]domain.Claim(nil), user.Claims...)
	return &clone
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}

func removeString(values []string, target string) []string {
	kept := values[:0:0]
	for _, value := range values {
		if strings.EqualFold(value, target) {
			continue
		}
		kept = append(kept, value)
	}
	return kept
}
