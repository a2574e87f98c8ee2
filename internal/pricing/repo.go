package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/pkg/db/models"
)

// Repository loads the per-agent distributor pricing rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetDistributorPricing(ctx context.Context, variantID, agentID uuid.UUID) (*models.AgentDistributorPricing, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pricing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetDistributorPricing(ctx context.Context, variantID, agentID uuid.UUID) (*models.AgentDistributorPricing, error) {
	var row models.AgentDistributorPricing
	err := r.db.WithContext(ctx).
		Where("variant_id = ? AND agent_id = ?", variantID, agentID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
