package domain_test

import (
	"testing"

	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/shopspring/decimal"
)

func TestOrderItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    domain.OrderItem
		wantErr bool
	}{
		{
			name:    "valid item",
			item:    domain.OrderItem{Quantity: 2, UnitPrice: decimal.NewFromInt(5), TotalPrice: decimal.NewFromInt(10)},
			wantErr: false,
		},
		{
			name:    "zero quantity is allowed on the item itself",
			item:    domain.OrderItem{Quantity: 0},
			wantErr: false,
		},
		{
			name:    "negative quantity",
			item:    domain.OrderItem{Quantity: -1},
			wantErr: true,
		},
		{
			name:    "negative unit price",
			item:    domain.OrderItem{Quantity: 1, UnitPrice: decimal.NewFromInt(-5)},
			wantErr: true,
		},
		{
			name:    "negative discount",
			item:    domain.OrderItem{Quantity: 1, DiscountAmount: decimal.NewFromInt(-1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("OrderItem.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrderItemLineTotal(t *testing.T) {
	i := domain.OrderItem{Quantity: 3, UnitPrice: decimal.RequireFromString("19.90")}
	if want := decimal.RequireFromString("59.70"); !i.LineTotal().Equal(want) {
		t.Errorf("LineTotal() = %s, want %s", i.LineTotal(), want)
	}
}
