package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a single line within an order. TotalPrice is what the line
// contributes to the order subtotal; tax and discount are tracked separately.
type OrderItem struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        uuid.UUID       `json:"order_id"`
	ProductRef     string          `json:"product_ref,omitempty"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`
}

// Validate ensures the line item adheres to business constraints.
func (i OrderItem) Validate() error {
	if i.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	if i.UnitPrice.IsNegative() {
		return errors.New("unit_price must not be negative")
	}
	if i.TaxAmount.IsNegative() {
		return errors.New("tax_amount must not be negative")
	}
	if i.DiscountAmount.IsNegative() {
		return errors.New("discount_amount must not be negative")
	}
	if i.TotalPrice.IsNegative() {
		return errors.New("total_price must not be negative")
	}
	return nil
}

// LineTotal is the unit price multiplied by the quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
