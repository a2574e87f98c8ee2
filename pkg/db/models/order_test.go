package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewOrderIDShape(t *testing.T) {
	now := time.Date(2025, 3, 9, 14, 30, 5, 0, time.UTC)
	id := NewOrderID(now)
	if len(id) != 20 {
		t.Fatalf("order id %q has length %d, want 20", id, len(id))
	}
	if id[:14] != "20250309143005" {
		t.Fatalf("order id %q does not start with the timestamp", id)
	}
	for _, c := range id[14:] {
		if c < '0' || c > '9' {
			t.Fatalf("order id suffix contains non-digit: %q", id)
		}
	}
}

func TestOrderAmountHelpers(t *testing.T) {
	order := Order{
		ShippingFee: decimal.NewFromInt(50),
		LineItems: []OrderLineItem{
			{UnitPrice: decimal.NewFromInt(100), Quantity: 3},
			{UnitPrice: decimal.NewFromInt(250), Quantity: 1},
		},
	}
	if !order.Amount().Equal(decimal.NewFromInt(550)) {
		t.Fatalf("Amount = %s, want 550", order.Amount())
	}
	if !order.TotalAmount().Equal(decimal.NewFromInt(600)) {
		t.Fatalf("TotalAmount = %s, want 600", order.TotalAmount())
	}
}
