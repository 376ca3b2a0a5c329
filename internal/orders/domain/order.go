package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusDraft        OrderStatus = "draft"
	StatusConfirmed    OrderStatus = "confirmed"
	StatusInProduction OrderStatus = "in_production"
	StatusCompleted    OrderStatus = "completed"
	StatusCancelled    OrderStatus = "cancelled"
)

// OrderType classifies what kind of work the order represents.
type OrderType string

const (
	TypeSale       OrderType = "sale"
	TypeProduction OrderType = "production"
	TypeService    OrderType = "service"
)

// PrintStatus tracks whether the order has been sent to a print batch.
type PrintStatus string

const (
	PrintStatusNotPrinted PrintStatus = "not_printed"
	PrintStatusPrinted    PrintStatus = "printed"
)

// LifecycleError reports a rejected order lifecycle action.
type LifecycleError struct {
	Action string
	Status OrderStatus
	Reason string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("cannot %s order in status %q: %s", e.Action, e.Status, e.Reason)
}

// Order is the aggregate root for a customer purchase, owning its line items
// and derived monetary totals. Totals are only consistent immediately after
// CalculateTotals; callers must re-invoke it after mutating Items.
type Order struct {
	ID                    uuid.UUID       `json:"id"`
	SequenceNumber        int64           `json:"sequence_number"`
	OrderDate             time.Time       `json:"order_date"`
	DeliveryDate          *time.Time      `json:"delivery_date,omitempty"`
	CustomerID            uuid.UUID       `json:"customer_id"`
	Status                OrderStatus     `json:"status"`
	Type                  OrderType       `json:"type"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	DiscountAmount        decimal.Decimal `json:"discount_amount"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	Notes                 string          `json:"notes,omitempty"`
	DeliveryAddressRef    string          `json:"delivery_address_ref,omitempty"`
	FiscalDataRef         string          `json:"fiscal_data_ref,omitempty"`
	RequiresFiscalReceipt bool            `json:"requires_fiscal_receipt"`
	PrintStatus           PrintStatus     `json:"print_status"`
	PrintBatch            *int64          `json:"print_batch,omitempty"`
	Items                 []OrderItem     `json:"items"`
	ContractIDs           []uuid.UUID     `json:"contract_ids,omitempty"`
	Version               int64           `json:"version"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// NewOrder creates a draft order for a customer.
func NewOrder(customerID uuid.UUID, orderType OrderType) Order {
	now := time.Now().UTC()
	return Order{
		ID:          uuid.New(),
		OrderDate:   now,
		CustomerID:  customerID,
		Status:      StatusDraft,
		Type:        orderType,
		PrintStatus: PrintStatusNotPrinted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if o.CustomerID == uuid.Nil {
		return errors.New("customer_id is required")
	}
	switch o.Type {
	case TypeSale, TypeProduction, TypeService:
	default:
		return fmt.Errorf("unknown order type %q", o.Type)
	}
	for i, item := range o.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// CalculateTotals recomputes the four monetary fields from the current items.
// Negative totals (discount exceeding subtotal plus tax) are accepted.
func (o *Order) CalculateTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	discount := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice)
		tax = tax.Add(item.TaxAmount)
		discount = discount.Add(item.DiscountAmount)
	}
	o.Subtotal = subtotal
	o.TaxAmount = tax
	o.DiscountAmount = discount
	o.TotalAmount = subtotal.Add(tax).Sub(discount)
}

// CanBeCompleted reports whether the order is eligible for completion.
func (o Order) CanBeCompleted() bool {
	if o.Status == StatusCompleted || o.Status == StatusCancelled {
		return false
	}
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return false
		}
	}
	return true
}

// CanBeCancelled reports whether the order may still be cancelled.
func (o Order) CanBeCancelled() bool {
	return o.Status != StatusCompleted && o.Status != StatusCancelled
}

// CanBePrinted reports whether the order is ready for its first print batch.
func (o Order) CanBePrinted() bool {
	return o.Status != StatusDraft &&
		o.Status != StatusCancelled &&
		o.PrintStatus == PrintStatusNotPrinted
}

// CanBeEdited reports whether the order still accepts mutations.
func (o Order) CanBeEdited() bool {
	return o.Status != StatusCompleted && o.Status != StatusCancelled
}

// Complete transitions the order to Completed after re-checking the
// completion predicate, so check and mutation happen in one step.
func (o *Order) Complete() error {
	if !o.CanBeCompleted() {
		return &LifecycleError{Action: "complete", Status: o.Status, Reason: completionReason(*o)}
	}
	o.Status = StatusCompleted
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the order to Cancelled after re-checking the predicate.
func (o *Order) Cancel() error {
	if !o.CanBeCancelled() {
		return &LifecycleError{Action: "cancel", Status: o.Status, Reason: "order already closed"}
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkPrinted records the print batch and flips the print status.
func (o *Order) MarkPrinted(batch int64) error {
	if !o.CanBePrinted() {
		reason := "order not in a printable status"
		if o.Status != StatusDraft && o.Status != StatusCancelled && o.PrintStatus == PrintStatusPrinted {
			reason = "order already printed"
		}
		return &LifecycleError{Action: "print", Status: o.Status, Reason: reason}
	}
	o.PrintStatus = PrintStatusPrinted
	o.PrintBatch = &batch
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func completionReason(o Order) string {
	switch {
	case o.Status == StatusCompleted || o.Status == StatusCancelled:
		return "order already closed"
	case len(o.Items) == 0:
		return "order has no items"
	default:
		return "order has an item without quantity"
	}
}
