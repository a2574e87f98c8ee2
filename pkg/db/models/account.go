package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simovate/simstack-backend/pkg/enums"
)

// Account is a tenant in the distribution hierarchy. The order engine only
// reads accounts; lifecycle management lives outside this service.
type Account struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name      string              `gorm:"column:name;not null"`
	Company   *string             `gorm:"column:company"`
	TaxID     *string             `gorm:"column:tax_id"`
	Phone     *string             `gorm:"column:phone"`
	Role      enums.AccountRole   `gorm:"column:role;not null"`
	Status    enums.AccountStatus `gorm:"column:status;not null;default:'ACTIVE'"`
	ParentID  *uuid.UUID          `gorm:"column:parent_id;type:uuid"`
	Parent    *Account            `gorm:"foreignKey:ParentID"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsActive reports whether the account may place or mutate orders.
func (a *Account) IsActive() bool {
	return a.Status == enums.AccountStatusActive
}

// ReceiptName is the name printed on receipt headers: company when present,
// display name otherwise.
func (a *Account) ReceiptName() string {
	if a.Company != nil && *a.Company != "" {
		return *a.Company
	}
	return a.Name
}
