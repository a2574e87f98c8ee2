package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:wallet_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.BalanceAccount{}, &models.BalanceLedgerEntry{}); err != nil {
		t.Fatalf("migrate wallet: %v", err)
	}
	return conn
}

type testRunner struct {
	conn *gorm.DB
}

func (r testRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return r.conn.Transaction(fn)
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), testRunner{conn: conn})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreditMaterializesWalletAndAppendsEntry(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	accountID := uuid.New()

	var entry *models.BalanceLedgerEntry
	err := conn.Transaction(func(tx *gorm.DB) error {
		var terr error
		entry, terr = svc.Credit(ctx, tx, accountID, decimal.NewFromInt(500), "", enums.LedgerEntryTypeDeposit, "initial topup")
		return terr
	})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}

	if !entry.Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("entry amount = %s", entry.Amount)
	}
	if !entry.BalanceBefore.IsZero() || !entry.BalanceAfter.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("before/after wrong: %s -> %s", entry.BalanceBefore, entry.BalanceAfter)
	}

	balance, err := svc.Balance(ctx, accountID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("balance = %s, want 500", balance)
	}
}

func TestDebitAppendsNegatedConsumptionEntry(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	accountID := uuid.New()

	if err := conn.Transaction(func(tx *gorm.DB) error {
		_, terr := svc.Credit(ctx, tx, accountID, decimal.NewFromInt(300), "", enums.LedgerEntryTypeDeposit, "")
		return terr
	}); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	var entry *models.BalanceLedgerEntry
	err := conn.Transaction(func(tx *gorm.DB) error {
		var terr error
		entry, terr = svc.Debit(ctx, tx, accountID, decimal.NewFromInt(120), "20250309120000123456", "order payment")
		return terr
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}

	if !entry.Amount.Equal(decimal.NewFromInt(-120)) {
		t.Fatalf("consumption amount should be negated, got %s", entry.Amount)
	}
	if entry.EntryType != enums.LedgerEntryTypeConsumption {
		t.Fatalf("entry type = %s", entry.EntryType)
	}
	if !entry.BalanceBefore.Equal(decimal.NewFromInt(300)) || !entry.BalanceAfter.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("before/after wrong: %s -> %s", entry.BalanceBefore, entry.BalanceAfter)
	}
	if entry.OrderID == nil || *entry.OrderID != "20250309120000123456" {
		t.Fatalf("order id not recorded: %v", entry.OrderID)
	}

	balance, err := svc.Balance(ctx, accountID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("balance = %s, want 180", balance)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	accountID := uuid.New()

	if err := conn.Transaction(func(tx *gorm.DB) error {
		_, terr := svc.Credit(ctx, tx, accountID, decimal.NewFromInt(50), "", enums.LedgerEntryTypeDeposit, "")
		return terr
	}); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	err := conn.Transaction(func(tx *gorm.DB) error {
		_, terr := svc.Debit(ctx, tx, accountID, decimal.NewFromInt(80), "", "")
		return terr
	})
	if err == nil {
		t.Fatal("expected insufficient balance error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["required"] != "80" || details["available"] != "50" {
		t.Fatalf("details wrong: %v", typed.Details())
	}

	// Balance must be untouched and no entry appended.
	balance, err := svc.Balance(ctx, accountID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("balance = %s, want 50", balance)
	}
	var count int64
	if err := conn.Model(&models.BalanceLedgerEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected only the deposit entry, got %d", count)
	}
}

func TestDebitMissingWalletIsInsufficient(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)

	err := conn.Transaction(func(tx *gorm.DB) error {
		_, terr := svc.Debit(context.Background(), tx, uuid.New(), decimal.NewFromInt(10), "", "")
		return terr
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEntriesReconcileWithBalance(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	accountID := uuid.New()

	steps := []struct {
		credit bool
		amount int64
	}{
		{true, 1000},
		{false, 300},
		{true, 50},
		{false, 250},
	}
	for _, step := range steps {
		if err := conn.Transaction(func(tx *gorm.DB) error {
			var terr error
			if step.credit {
				_, terr = svc.Credit(ctx, tx, accountID, decimal.NewFromInt(step.amount), "", enums.LedgerEntryTypeDeposit, "")
			} else {
				_, terr = svc.Debit(ctx, tx, accountID, decimal.NewFromInt(step.amount), "", "")
			}
			return terr
		}); err != nil {
			t.Fatalf("step %+v: %v", step, err)
		}
	}

	entries, _, err := svc.Entries(ctx, accountID, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	sum := decimal.Zero
	for _, entry := range entries {
		sum = sum.Add(entry.Amount)
		if !entry.BalanceAfter.Equal(entry.BalanceBefore.Add(entry.Amount)) {
			t.Fatalf("entry does not reconcile: %+v", entry)
		}
	}
	balance, err := svc.Balance(ctx, accountID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(sum) {
		t.Fatalf("balance %s != entry sum %s", balance, sum)
	}
	if !balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("balance = %s, want 500", balance)
	}
}

func TestDepositRunsInItsOwnTransaction(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	accountID := uuid.New()

	entry, err := svc.Deposit(ctx, accountID, decimal.NewFromInt(250), "manual topup")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if entry.EntryType != enums.LedgerEntryTypeDeposit {
		t.Fatalf("entry type = %s", entry.EntryType)
	}
	if !entry.BalanceAfter.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("balance after = %s", entry.BalanceAfter)
	}

	if _, err := svc.Deposit(ctx, accountID, decimal.Zero, "noop"); err == nil {
		t.Fatal("expected validation error for zero amount")
	}
}
