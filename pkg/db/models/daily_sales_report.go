package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailySalesReport is the (account, day) sales rollup. Rows are recomputed
// from paid orders until the cron worker finalizes them.
type DailySalesReport struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	AccountID        uuid.UUID       `gorm:"column:account_id;type:uuid;not null;uniqueIndex:uq_daily_sales_reports"`
	Date             time.Time       `gorm:"column:date;type:date;not null;uniqueIndex:uq_daily_sales_reports"`
	Revenue          decimal.Decimal `gorm:"column:revenue;type:numeric(12,0);not null;default:0"`
	OrderCount       int64           `gorm:"column:order_count;not null;default:0"`
	ProductSoldCount int64           `gorm:"column:product_sold_count;not null;default:0"`
	ByProductType    json.RawMessage `gorm:"column:by_product_type;type:jsonb"`
	BySource         json.RawMessage `gorm:"column:by_source;type:jsonb"`
	IsFinalized      bool            `gorm:"column:is_finalized;not null;default:false"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
