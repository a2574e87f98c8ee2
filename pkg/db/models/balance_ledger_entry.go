package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simovate/simstack-backend/pkg/enums"
)

// BalanceLedgerEntry is one append-only wallet movement. Amount is signed:
// consumption entries carry the negated order total. Entries are never
// updated; the only delete path is compensating an order deletion.
type BalanceLedgerEntry struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	BalanceAccountID uuid.UUID             `gorm:"column:balance_account_id;type:uuid;not null;index"`
	Amount           decimal.Decimal       `gorm:"column:amount;type:numeric(10,0);not null"`
	BalanceBefore    decimal.Decimal       `gorm:"column:balance_before;type:numeric(10,0);not null"`
	BalanceAfter     decimal.Decimal       `gorm:"column:balance_after;type:numeric(10,0);not null"`
	OrderID          *string               `gorm:"column:order_id;index"`
	EntryType        enums.LedgerEntryType `gorm:"column:entry_type;not null"`
	IsConfirmed      bool                  `gorm:"column:is_confirmed;not null;default:true"`
	Remark           *string               `gorm:"column:remark"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
}
