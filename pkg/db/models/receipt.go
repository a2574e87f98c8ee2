package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simovate/simstack-backend/pkg/enums"
)

// Receipt is the issued document for an order (or a manual entry). Number is
// the customer-facing identifier: R + issue date + daily sequence.
type Receipt struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Number     string            `gorm:"column:number;not null;uniqueIndex:uq_receipts_number"`
	Type       enums.ReceiptType `gorm:"column:type;not null;default:'ORDER'"`
	ReceiptTo  string            `gorm:"column:receipt_to;not null"`
	TaxID      *string           `gorm:"column:tax_id"`
	OrderID    *string           `gorm:"column:order_id;index"`
	IssuedDate time.Time         `gorm:"column:issued_date;type:date;not null"`
	Items      []ReceiptItem     `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// Total sums the item subtotals.
func (r *Receipt) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range r.Items {
		total = total.Add(r.Items[i].Subtotal())
	}
	return total
}

// ReceiptItem is one printed line: a snapshot, never a catalog reference.
type ReceiptItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ReceiptID   uuid.UUID       `gorm:"column:receipt_id;type:uuid;not null;index"`
	ProductName string          `gorm:"column:product_name;not null"`
	ProductCode *string         `gorm:"column:product_code"`
	Quantity    int64           `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,0);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// Subtotal is unit price times quantity.
func (ri *ReceiptItem) Subtotal() decimal.Decimal {
	return ri.UnitPrice.Mul(decimal.NewFromInt(ri.Quantity))
}
