package reports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
)

// paidStatuses are the order states that count as realized sales.
var paidStatuses = []enums.OrderStatus{
	enums.OrderStatusPaid,
	enums.OrderStatusWaitShip,
	enums.OrderStatusShipping,
	enums.OrderStatusWaitPickup,
	enums.OrderStatusDone,
}

// Repository persists daily sales reports and reads the paid orders they
// aggregate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, accountID uuid.UUID, date time.Time) (*models.DailySalesReport, error)
	Upsert(ctx context.Context, report *models.DailySalesReport) error
	MarkFinalized(ctx context.Context, accountID uuid.UUID, date time.Time) error
	ListForAccount(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]models.DailySalesReport, error)
	PaidOrdersForDay(ctx context.Context, accountID uuid.UUID, day time.Time) ([]models.Order, error)
	AccountsWithOrdersOn(ctx context.Context, day time.Time) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reports repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, accountID uuid.UUID, date time.Time) (*models.DailySalesReport, error) {
	var report models.DailySalesReport
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND date = ?", accountID, date).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *repository) Upsert(ctx context.Context, report *models.DailySalesReport) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"revenue", "order_count", "product_sold_count",
				"by_product_type", "by_source", "updated_at",
			}),
		}).
		Create(report).Error
}

func (r *repository) MarkFinalized(ctx context.Context, accountID uuid.UUID, date time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.DailySalesReport{}).
		Where("account_id = ? AND date = ?", accountID, date).
		Update("is_finalized", true).Error
}

func (r *repository) ListForAccount(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]models.DailySalesReport, error) {
	var rows []models.DailySalesReport
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND date >= ? AND date <= ?", accountID, from, to).
		Order("date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) PaidOrdersForDay(ctx context.Context, accountID uuid.UUID, day time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems.Variant").
		Where("account_id = ?", accountID).
		Where("status IN ?", paidStatuses).
		Where("created_at >= ? AND created_at < ?", day, day.Add(24*time.Hour)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) AccountsWithOrdersOn(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Distinct("account_id").
		Where("status IN ?", paidStatuses).
		Where("created_at >= ? AND created_at < ?", day, day.Add(24*time.Hour)).
		Pluck("account_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
