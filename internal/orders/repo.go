package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/pkg/db"
	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
	"github.com/simovate/simstack-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	Lock(ctx context.Context, id string) (*models.Order, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) error
	GetLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLineItem, error)
	CreateLine(ctx context.Context, line *models.OrderLineItem) error
	SaveLine(ctx context.Context, line *models.OrderLineItem) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	DeleteLinesByOrder(ctx context.Context, orderID string) error
	CountLines(ctx context.Context, orderID string) (int64, error)
	DeleteOrder(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC").Order("id ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Lock takes the order row lock, then loads the lines. The order row is the
// serialization point for all lifecycle mutations on one order.
func (r *repository) Lock(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("created_at ASC").Order("id ASC").
		Find(&order.LineItems).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("account_id = ?", accountID).
		Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
}

func (r *repository) GetLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLineItem, error) {
	var line models.OrderLineItem
	err := r.db.WithContext(ctx).Where("id = ?", lineID).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.OrderLineItem) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) SaveLine(ctx context.Context, line *models.OrderLineItem) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", lineID).
		Delete(&models.OrderLineItem{}).Error
}

func (r *repository) DeleteLinesByOrder(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderLineItem{}).Error
}

func (r *repository) CountLines(ctx context.Context, orderID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) DeleteOrder(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Order{}).Error
}
