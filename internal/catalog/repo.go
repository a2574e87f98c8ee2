package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
)

// Repository reads the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetVariant(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	ListActiveVariants(ctx context.Context) ([]models.Variant, error)
	GetVariantsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Variant, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetVariant(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

func (r *repository) ListActiveVariants(ctx context.Context) ([]models.Variant, error) {
	var variants []models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Joins("JOIN products ON products.id = variants.product_id").
		Where("variants.status = ?", enums.VariantStatusActive).
		Where("products.status = ?", enums.ProductStatusActive).
		Order("products.sort_order ASC").
		Order("variants.product_code ASC").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *repository) GetVariantsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Variant, error) {
	var variants []models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id IN ?", ids).
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.Variant, len(variants))
	for i := range variants {
		out[variants[i].ID] = &variants[i]
	}
	return out, nil
}
