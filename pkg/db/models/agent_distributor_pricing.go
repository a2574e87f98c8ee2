package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgentDistributorPricing is the per-agent price pair a distributor under
// that agent buys a variant at. Unique per (variant, agent).
type AgentDistributorPricing struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	VariantID            uuid.UUID        `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:uq_agent_distributor_pricing"`
	AgentID              uuid.UUID        `gorm:"column:agent_id;type:uuid;not null;uniqueIndex:uq_agent_distributor_pricing"`
	PriceDistributor     *decimal.Decimal `gorm:"column:price_distributor;type:numeric(10,0)"`
	SalePriceDistributor *decimal.Decimal `gorm:"column:sale_price_distributor;type:numeric(10,0)"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
