package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simovate/simstack-backend/pkg/enums"
)

// Product groups sellable variants under one catalog entry.
type Product struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name      string              `gorm:"column:name;not null"`
	Category  *string             `gorm:"column:category"`
	Status    enums.ProductStatus `gorm:"column:status;not null;default:'ACTIVE'"`
	SortOrder int                 `gorm:"column:sort_order;not null;default:0"`
	Variants  []Variant           `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsActive reports whether the product is currently sellable.
func (p *Product) IsActive() bool {
	return p.Status == enums.ProductStatusActive
}

// Variant is the sellable unit. Role pricing lives directly on the row as
// (price, sale price) pairs; distributor pricing is per-agent and lives in
// AgentDistributorPricing instead.
type Variant struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Product     *Product            `gorm:"foreignKey:ProductID"`
	ProductType enums.ProductType   `gorm:"column:product_type;not null"`
	ProductCode string              `gorm:"column:product_code;not null"`
	SKU         string              `gorm:"column:sku;not null"`
	Status      enums.VariantStatus `gorm:"column:status;not null;default:'ACTIVE'"`

	Price          *decimal.Decimal `gorm:"column:price;type:numeric(10,0)"`
	SalePrice      *decimal.Decimal `gorm:"column:sale_price;type:numeric(10,0)"`
	PriceAgent     *decimal.Decimal `gorm:"column:price_agent;type:numeric(10,0)"`
	SalePriceAgent *decimal.Decimal `gorm:"column:sale_price_agent;type:numeric(10,0)"`
	PricePeer      *decimal.Decimal `gorm:"column:price_peer;type:numeric(10,0)"`
	SalePricePeer  *decimal.Decimal `gorm:"column:sale_price_peer;type:numeric(10,0)"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsActive reports whether the variant is currently sellable.
func (v *Variant) IsActive() bool {
	return v.Status == enums.VariantStatusActive
}
