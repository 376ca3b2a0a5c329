package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus captures the lifecycle of a contract.
type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractActive    ContractStatus = "active"
	ContractSigned    ContractStatus = "signed"
	ContractSuspended ContractStatus = "suspended"
	ContractCancelled ContractStatus = "cancelled"
	ContractCompleted ContractStatus = "completed"
	ContractRenewed   ContractStatus = "renewed"
	// ContractExpired is never stored by a transition; expiry is a calendar
	// view computed by IsExpired.
	ContractExpired ContractStatus = "expired"
)

// nearExpirationWindow is how far ahead IsNearExpiration looks.
const nearExpirationWindow = 30 * 24 * time.Hour

// TransitionError reports a transition attempted from a state its guard
// does not allow. The contract status is left unchanged.
type TransitionError struct {
	Current   ContractStatus
	Attempted string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s contract in status %q", e.Attempted, e.Current)
}

// Contract is a service agreement with a customer, moved through its
// lifecycle exclusively by the guarded transition methods below.
type Contract struct {
	ID               uuid.UUID       `json:"id"`
	ContractNumber   string          `json:"contract_number"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	TotalValue       decimal.Decimal `json:"total_value"`
	Status           ContractStatus  `json:"status"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	Terms            string          `json:"terms,omitempty"`
	SignedDate       *time.Time      `json:"signed_date,omitempty"`
	SignedByCustomer string          `json:"signed_by_customer,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	UpdatedBy        string          `json:"updated_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewContract creates a draft contract and assigns a generated contract
// number in the form CONT{year}{MMddHHmmss}.
func NewContract(title string, customerID uuid.UUID, totalValue decimal.Decimal) Contract {
	now := time.Now().UTC()
	return Contract{
		ID:             uuid.New(),
		ContractNumber: GenerateContractNumber(now),
		Title:          title,
		StartDate:      now,
		TotalValue:     totalValue,
		Status:         ContractDraft,
		CustomerID:     customerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// GenerateContractNumber builds the CONT{year}{MMddHHmmss} number for a
// given instant.
func GenerateContractNumber(at time.Time) string {
	return fmt.Sprintf("CONT%d%s", at.Year(), at.Format("0102150405"))
}

// Validate ensures the contract adheres to business constraints.
func (c Contract) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title is required")
	}
	if c.CustomerID == uuid.Nil {
		return errors.New("customer_id is required")
	}
	if !c.TotalValue.IsPositive() {
		return errors.New("total_value must be positive")
	}
	return nil
}

// Confirm moves a draft contract into Active.
func (c *Contract) Confirm(by string) error {
	if c.Status != ContractDraft {
		return &TransitionError{Current: c.Status, Attempted: "confirm"}
	}
	c.Status = ContractActive
	c.stampModification(by)
	return nil
}

// Sign records the customer signature and moves an active contract into
// Signed. The signature fields are recorded before the guard is checked,
// matching the behavior the rest of the system has come to rely on: a
// rejected Sign still leaves SignedDate and SignedByCustomer set.
func (c *Contract) Sign(by string, date *time.Time) error {
	signedAt := time.Now().UTC()
	if date != nil {
		signedAt = *date
	}
	c.SignedDate = &signedAt
	c.SignedByCustomer = by
	c.stampModification(by)

	if c.Status != ContractActive {
		return &TransitionError{Current: c.Status, Attempted: "sign"}
	}
	c.Status = ContractSigned
	return nil
}

// Suspend halts an active or signed contract.
func (c *Contract) Suspend(by string) error {
	if c.Status != ContractActive && c.Status != ContractSigned {
		return &TransitionError{Current: c.Status, Attempted: "suspend"}
	}
	c.Status = ContractSuspended
	c.stampModification(by)
	return nil
}

// Cancel moves the contract into Cancelled from any state.
func (c *Contract) Cancel(by string) error {
	c.Status = ContractCancelled
	c.stampModification(by)
	return nil
}

// Complete closes out a signed or active contract.
func (c *Contract) Complete(by string) error {
	if c.Status != ContractSigned && c.Status != ContractActive {
		return &TransitionError{Current: c.Status, Attempted: "complete"}
	}
	c.Status = ContractCompleted
	c.stampModification(by)
	return nil
}

// Renew extends a completed or active contract to a new end date.
func (c *Contract) Renew(newEndDate time.Time, by string) error {
	if c.Status != ContractCompleted && c.Status != ContractActive {
		return &TransitionError{Current: c.Status, Attempted: "renew"}
	}
	c.EndDate = &newEndDate
	c.Status = ContractRenewed
	c.stampModification(by)
	return nil
}

// IsActive reports whether the stored status still counts as open business.
func (c Contract) IsActive() bool {
	switch c.Status {
	case ContractActive, ContractSigned, ContractRenewed:
		return true
	default:
		return false
	}
}

// IsExpired reports whether an open contract has passed its end date.
// Expiry is gated by the stored status: a contract whose status was already
// moved out of the active set never reads as expired, regardless of date.
func (c Contract) IsExpired() bool {
	if c.EndDate == nil || !c.IsActive() {
		return false
	}
	return c.EndDate.Before(time.Now().UTC())
}

// IsNearExpiration reports whether an open contract ends within the next
// thirty days.
func (c Contract) IsNearExpiration() bool {
	if c.EndDate == nil || !c.IsActive() {
		return false
	}
	now := time.Now().UTC()
	return c.EndDate.After(now) && !c.EndDate.After(now.Add(nearExpirationWindow))
}

// DurationInDays returns the contract span in whole days, using today when
// no end date is set.
func (c Contract) DurationInDays() int {
	end := time.Now().UTC()
	if c.EndDate != nil {
		end = *c.EndDate
	}
	return int(end.Sub(c.StartDate).Hours() / 24)
}

// StatusDisplay renders the status for presentation.
func (c Contract) StatusDisplay() string {
	switch c.Status {
	case ContractDraft:
		return "Rascunho"
	case ContractActive:
		return "Ativo"
	case ContractSigned:
		return "Assinado"
	case ContractSuspended:
		return "Suspenso"
	case ContractCancelled:
		return "Cancelado"
	case ContractCompleted:
		return "Concluído"
	case ContractRenewed:
		return "Renovado"
	case ContractExpired:
		return "Expirado"
	default:
		return string(c.Status)
	}
}

// Summary renders a one-line description used in listings and logs.
func (c Contract) Summary() string {
	return fmt.Sprintf("%s - %s (%s)", c.ContractNumber, c.Title, c.StatusDisplay())
}

func (c *Contract) stampModification(by string) {
	c.UpdatedBy = by
	c.UpdatedAt = time.Now().UTC()
}
