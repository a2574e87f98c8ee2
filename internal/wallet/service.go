package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/pagination"
)

// Service is the prepaid wallet ledger. Every balance change locks the wallet
// row and appends one ledger entry carrying the before/after snapshot, so the
// entry chain always reconciles with the balance.
type Service interface {
	Debit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, orderID string, remark string) (*models.BalanceLedgerEntry, error)
	Credit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, orderID string, entryType enums.LedgerEntryType, remark string) (*models.BalanceLedgerEntry, error)
	Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, remark string) (*models.BalanceLedgerEntry, error)
	Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	Entries(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.BalanceLedgerEntry, string, error)
	DeleteEntriesForOrder(ctx context.Context, tx *gorm.DB, orderID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	runner txRunner
}

// NewService wires a wallet service with the provided repository. The runner
// backs Deposit, which opens its own transaction.
func NewService(repo Repository, runner txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, runner: runner}, nil
}

// Deposit tops up the wallet outside any order flow.
func (s *service) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, remark string) (*models.BalanceLedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit amount must be positive")
	}

	var entry *models.BalanceLedgerEntry
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		var terr error
		entry, terr = s.Credit(ctx, tx, accountID, amount, "", enums.LedgerEntryTypeDeposit, remark)
		return terr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Debit withdraws amount from the wallet and appends a CONSUMPTION entry with
// the negated amount. Fails with a state conflict when the balance is short.
func (s *service) Debit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, orderID string, remark string) (*models.BalanceLedgerEntry, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if amount.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}

	repo := s.repo.WithTx(tx)
	balance, err := repo.LockByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if balance == nil || balance.Balance.LessThan(amount) {
		available := decimal.Zero
		if balance != nil {
			available = balance.Balance
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient balance").
			WithDetails(map[string]any{
				"required":  amount.String(),
				"available": available.String(),
			})
	}

	before := balance.Balance
	balance.Balance = balance.Balance.Sub(amount)
	if err := repo.Save(ctx, balance); err != nil {
		return nil, err
	}

	entry := &models.BalanceLedgerEntry{
		BalanceAccountID: balance.ID,
		Amount:           amount.Neg(),
		BalanceBefore:    before,
		BalanceAfter:     balance.Balance,
		EntryType:        enums.LedgerEntryTypeConsumption,
		IsConfirmed:      true,
	}
	if orderID != "" {
		entry.OrderID = &orderID
	}
	if remark != "" {
		entry.Remark = &remark
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Credit adds amount to the wallet, creating the wallet row on first use.
func (s *service) Credit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, orderID string, entryType enums.LedgerEntryType, remark string) (*models.BalanceLedgerEntry, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if amount.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if !entryType.IsValid() || entryType == enums.LedgerEntryTypeConsumption {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid credit entry type %q", entryType))
	}

	repo := s.repo.WithTx(tx)
	balance, err := repo.LockByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance = &models.BalanceAccount{AccountID: accountID, Balance: decimal.Zero}
		if err := repo.Create(ctx, balance); err != nil {
			return nil, err
		}
	}

	before := balance.Balance
	balance.Balance = balance.Balance.Add(amount)
	if err := repo.Save(ctx, balance); err != nil {
		return nil, err
	}

	entry := &models.BalanceLedgerEntry{
		BalanceAccountID: balance.ID,
		Amount:           amount,
		BalanceBefore:    before,
		BalanceAfter:     balance.Balance,
		EntryType:        entryType,
		IsConfirmed:      true,
	}
	if orderID != "" {
		entry.OrderID = &orderID
	}
	if remark != "" {
		entry.Remark = &remark
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Balance reads the wallet balance. An absent wallet reads as zero.
func (s *service) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	balance, err := s.repo.GetByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if balance == nil {
		return decimal.Zero, nil
	}
	return balance.Balance, nil
}

func (s *service) Entries(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.BalanceLedgerEntry, string, error) {
	balance, err := s.repo.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, "", err
	}
	if balance == nil {
		return nil, "", nil
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	entries, err := s.repo.ListEntries(ctx, balance.ID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID.String()})
	}
	return entries, next, nil
}

// DeleteEntriesForOrder removes the ledger entries tied to an order. Only the
// order engine's compensating delete calls this.
func (s *service) DeleteEntriesForOrder(ctx context.Context, tx *gorm.DB, orderID string) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.repo.WithTx(tx).DeleteEntriesByOrder(ctx, orderID)
}
