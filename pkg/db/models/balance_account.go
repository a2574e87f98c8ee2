package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceAccount is an account's prepaid wallet. Balance never goes
// negative; every change appends a BalanceLedgerEntry.
type BalanceAccount struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	AccountID uuid.UUID       `gorm:"column:account_id;type:uuid;not null;uniqueIndex"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(10,0);not null;default:0"`
	Remark    *string         `gorm:"column:remark"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
