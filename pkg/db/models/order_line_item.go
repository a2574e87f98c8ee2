package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/simovate/simstack-backend/pkg/db/types"
	"github.com/simovate/simstack-backend/pkg/enums"
)

// OrderLineItem snapshots a variant at purchase time. UsedStock carries the
// per-lot deduction trace that makes the fulfillment reversible; the variant
// ref is nullable so catalog deletion never orphans sold lines.
type OrderLineItem struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     string                `gorm:"column:order_id;not null;index"`
	VariantID   *uuid.UUID            `gorm:"column:variant_id;type:uuid"`
	Variant     *Variant              `gorm:"foreignKey:VariantID"`
	ProductCode string                `gorm:"column:product_code;not null"`
	UnitPrice   decimal.Decimal       `gorm:"column:unit_price;type:numeric(10,0);not null"`
	Quantity    int64                 `gorm:"column:quantity;not null"`
	UsedStock   dbtypes.DeductionTrace `gorm:"column:used_stock;type:jsonb;not null"`
	Status      enums.LineItemStatus  `gorm:"column:status;not null;default:'NORMAL'"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// Subtotal is unit price times quantity.
func (li *OrderLineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
}
