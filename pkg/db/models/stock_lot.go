package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLot is one intake batch of a variant. Lots are consumed oldest-first;
// a drained lot keeps its row with IsUsed set so deduction traces stay
// replayable.
type StockLot struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	VariantID       uuid.UUID  `gorm:"column:variant_id;type:uuid;not null;index:idx_stock_lots_fifo,priority:1"`
	Name            string     `gorm:"column:name;not null"`
	Code            *string    `gorm:"column:code"`
	InitialQuantity int64      `gorm:"column:initial_quantity;not null"`
	Quantity        int64      `gorm:"column:quantity;not null;index:idx_stock_lots_fifo,priority:3"`
	IsUsed          bool       `gorm:"column:is_used;not null;default:false;index:idx_stock_lots_fifo,priority:2"`
	ExchangeTime    *time.Time `gorm:"column:exchange_time"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
