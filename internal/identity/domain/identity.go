package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an administrative principal of the application.
type User struct {
	ID          uuid.UUID `json:"id"`
	UserName    string    `json:"user_name"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Active      bool      `json:"active"`
	Roles       []string  `json:"roles,omitempty"`
	Claims      []Claim   `json:"claims,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Role groups users under a named permission set.
type Role struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Claim is a typed key/value attached to a user.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NewUser creates an active user principal.
func NewUser(userName, email string) User {
	now := time.Now().UTC()
	return User{
		ID:        uuid.New(),
		UserName:  userName,
		Email:     email,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate ensures the user adheres to business constraints.
func (u User) Validate() error {
	if strings.TrimSpace(u.UserName) == "" {
		return errors.New("user_name is required")
	}
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		return errors.New("email must be valid")
	}
	return nil
}

// Validate ensures the claim carries both parts.
func (c Claim) Validate() error {
	if strings.TrimSpace(c.Type) == "" {
		return errors.New("claim type is required")
	}
	if strings.TrimSpace(c.Value) == "" {
		return errors.New("claim value is required")
	}
	return nil
}

// Result is the outcome shape every identity store operation returns: a
// success flag plus human-readable error descriptions for the caller to
// surface.
type Result struct {
	Succeeded bool     `json:"succeeded"`
	Errors    []string `json:"errors,omitempty"`
}

// Ok is the successful result.
func Ok() Result {
	return Result{Succeeded: true}
}

// Failed builds a rejected result from error descriptions.
func Failed(descriptions ...string) Result {
	return Result{Errors: descriptions}
}
