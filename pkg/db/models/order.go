package models

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simovate/simstack-backend/pkg/enums"
)

// Order is the fulfillment aggregate. The primary key is an opaque generated
// token, not a uuid, so it can double as the customer-facing order number.
type Order struct {
	ID          string            `gorm:"column:id;primaryKey"`
	AccountID   uuid.UUID         `gorm:"column:account_id;type:uuid;not null;index"`
	Account     *Account          `gorm:"foreignKey:AccountID"`
	CreatedByID uuid.UUID         `gorm:"column:created_by_id;type:uuid;not null"`
	Status      enums.OrderStatus `gorm:"column:status;not null"`
	PaymentType enums.PaymentType `gorm:"column:payment_type;not null"`
	Source      enums.OrderSource `gorm:"column:source;not null;default:'ERP'"`
	ShippingFee decimal.Decimal   `gorm:"column:shipping_fee;type:numeric(10,0);not null;default:0"`
	Remark      *string           `gorm:"column:remark"`
	AdminRemark *string           `gorm:"column:admin_remark"`
	LineItems   []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// Amount sums unit price times quantity across the loaded line items.
func (o *Order) Amount() decimal.Decimal {
	total := decimal.Zero
	for i := range o.LineItems {
		total = total.Add(o.LineItems[i].Subtotal())
	}
	return total
}

// TotalAmount is Amount plus the shipping fee.
func (o *Order) TotalAmount() decimal.Decimal {
	return o.Amount().Add(o.ShippingFee)
}

// NewOrderID builds an order token: the creation timestamp down to the
// second followed by six random digits.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("%s%06d", now.Format("20060102150405"), rand.Intn(1000000))
}
