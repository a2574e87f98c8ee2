package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/pkg/db"
	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/pagination"
)

// Repository manages persistence for balance accounts and their ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.BalanceAccount, error)
	LockByAccount(ctx context.Context, accountID uuid.UUID) (*models.BalanceAccount, error)
	Create(ctx context.Context, balance *models.BalanceAccount) error
	Save(ctx context.Context, balance *models.BalanceAccount) error
	CreateEntry(ctx context.Context, entry *models.BalanceLedgerEntry) error
	ListEntries(ctx context.Context, balanceAccountID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.BalanceLedgerEntry, error)
	DeleteEntriesByOrder(ctx context.Context, orderID string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.BalanceAccount, error) {
	return r.getByAccount(r.db.WithContext(ctx), accountID)
}

// LockByAccount locks the wallet row for the duration of the transaction. A
// missing wallet returns nil, nil so the caller can materialize one lazily.
func (r *repository) LockByAccount(ctx context.Context, accountID uuid.UUID) (*models.BalanceAccount, error) {
	return r.getByAccount(db.ForUpdate(r.db.WithContext(ctx)), accountID)
}

func (r *repository) getByAccount(tx *gorm.DB, accountID uuid.UUID) (*models.BalanceAccount, error) {
	var balance models.BalanceAccount
	err := tx.Where("account_id = ?", accountID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *repository) Create(ctx context.Context, balance *models.BalanceAccount) error {
	return r.db.WithContext(ctx).Create(balance).Error
}

func (r *repository) Save(ctx context.Context, balance *models.BalanceAccount) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.BalanceLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, balanceAccountID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.BalanceLedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("balance_account_id = ?", balanceAccountID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var entries []models.BalanceLedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) DeleteEntriesByOrder(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.BalanceLedgerEntry{}).Error
}
