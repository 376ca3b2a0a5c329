package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentType distinguishes individual from company tax identifiers.
type DocumentType string

const (
	DocumentCPF  DocumentType = "cpf"
	DocumentCNPJ DocumentType = "cnpj"
)

const (
	// NoNameFallback is shown when a customer record has no usable name.
	NoNameFallback = "Cliente sem nome"
	// NoContactFallback is shown when neither email nor phone is recorded.
	NoContactFallback = "Nenhum contato informado"
)

// Customer holds identification and contact data for a buyer.
type Customer struct {
	ID                 uuid.UUID    `json:"id"`
	FirstName          string       `json:"first_name"`
	LastName           string       `json:"last_name,omitempty"`
	Email              string       `json:"email,omitempty"`
	Phone              string       `json:"phone,omitempty"`
	DocumentType       DocumentType `json:"document_type,omitempty"`
	DocumentNumber     string       `json:"document_number,omitempty"`
	ExternalContactRef string       `json:"external_contact_ref,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// NewCustomer creates a customer with the minimal identifying fields.
func NewCustomer(firstName, lastName string) Customer {
	now := time.Now().UTC()
	return Customer{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate ensures the customer adheres to business constraints.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" {
		return errors.New("first_name is required")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return errors.New("email must be valid")
	}
	switch c.DocumentType {
	case "", DocumentCPF, DocumentCNPJ:
	default:
		return fmt.Errorf("unknown document_type %q", c.DocumentType)
	}
	return nil
}

// FullName joins first and last name, trimming surrounding whitespace.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// IsCompany reports whether the customer is registered under a company tax id.
func (c Customer) IsCompany() bool {
	return c.DocumentType == DocumentCNPJ
}

// HasCompleteData reports whether all fields needed for fiscal documents are present.
func (c Customer) HasCompleteData() bool {
	return strings.TrimSpace(c.FirstName) != "" &&
		c.Email != "" &&
		c.DocumentType != "" &&
		c.DocumentNumber != ""
}

// DisplayName returns the full name, or a fixed fallback when blank.
func (c Customer) DisplayName() string {
	if name := c.FullName(); name != "" {
		return name
	}
	return NoNameFallback
}

// ContactInfo joins the recorded contact channels with " | ".
func (c Customer) ContactInfo() string {
	var channels []string
	if c.Email != "" {
		channels = append(channels, "📧 "+c.Email)
	}
	if c.Phone != "" {
		channels = append(channels, "📞 "+c.Phone)
	}
	if len(channels) == 0 {
		return NoContactFallback
	}
	return strings.Join(channels, " | ")
}

// Summary renders a one-line description used in listings and logs.
func (c Customer) Summary() string {
	parts := []string{c.DisplayName()}
	if c.DocumentType != "" && c.DocumentNumber != "" {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToUpper(string(c.DocumentType)), c.DocumentNumber))
	}
	if contact := c.ContactInfo(); contact != NoContactFallback {
		parts = append(parts, contact)
	}
	return strings.Join(parts, " - ")
}
