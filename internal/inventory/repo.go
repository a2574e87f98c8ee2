package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/pkg/db"
	"github.com/simovate/simstack-backend/pkg/db/models"
)

// Repository manages persistence for stock lots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockOpenLots(ctx context.Context, variantID uuid.UUID) ([]models.StockLot, error)
	LockLot(ctx context.Context, lotID uuid.UUID) (*models.StockLot, error)
	SaveLot(ctx context.Context, lot *models.StockLot) error
	CreateLot(ctx context.Context, lot *models.StockLot) error
	SumOpen(ctx context.Context, variantID uuid.UUID) (int64, error)
	ListByVariant(ctx context.Context, variantID uuid.UUID) ([]models.StockLot, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock lot repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// LockOpenLots returns the undrained lots of a variant in FIFO order with
// their rows locked for the duration of the transaction.
func (r *repository) LockOpenLots(ctx context.Context, variantID uuid.UUID) ([]models.StockLot, error) {
	var lots []models.StockLot
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("variant_id = ? AND is_used = ? AND quantity > 0", variantID, false).
		Order("created_at ASC").
		Order("id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

// LockLot locks a single lot by id. A missing lot returns nil, nil.
func (r *repository) LockLot(ctx context.Context, lotID uuid.UUID) (*models.StockLot, error) {
	var lot models.StockLot
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("id = ?", lotID).
		First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (r *repository) SaveLot(ctx context.Context, lot *models.StockLot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

func (r *repository) CreateLot(ctx context.Context, lot *models.StockLot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

func (r *repository) SumOpen(ctx context.Context, variantID uuid.UUID) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.StockLot{}).
		Select("SUM(quantity)").
		Where("variant_id = ? AND is_used = ?", variantID, false).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) ListByVariant(ctx context.Context, variantID uuid.UUID) ([]models.StockLot, error) {
	var lots []models.StockLot
	err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}
