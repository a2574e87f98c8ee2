package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/internal/accounts"
	"github.com/simovate/simstack-backend/internal/catalog"
	"github.com/simovate/simstack-backend/internal/inventory"
	"github.com/simovate/simstack-backend/internal/wallet"
	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/outbox"
)

type testRunner struct {
	conn *gorm.DB
}

func (r testRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.conn.WithContext(ctx).Transaction(fn)
}

type engineFixture struct {
	conn *gorm.DB
	svc  Service
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Account{},
		&models.Product{},
		&models.Variant{},
		&models.AgentDistributorPricing{},
		&models.StockLot{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.BalanceAccount{},
		&models.BalanceLedgerEntry{},
		&models.OutboxEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	accountsSv, err := accounts.NewService(accounts.NewRepository(conn))
	if err != nil {
		t.Fatalf("accounts service: %v", err)
	}
	stockSv, err := inventory.NewService(inventory.NewRepository(conn), nil)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	walletSv, err := wallet.NewService(wallet.NewRepository(conn), testRunner{conn: conn})
	if err != nil {
		t.Fatalf("wallet service: %v", err)
	}
	events := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(
		testRunner{conn: conn},
		NewRepository(conn),
		catalog.NewRepository(conn),
		accountsSv,
		stockSv,
		walletSv,
		events,
		nil,
	)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	return &engineFixture{conn: conn, svc: svc}
}

func (f *engineFixture) seedAccount(t *testing.T, role enums.AccountRole, balance int64) *models.Account {
	t.Helper()
	account := models.Account{Name: "acct", Role: role, Status: enums.AccountStatusActive}
	if err := f.conn.Create(&account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	ba := models.BalanceAccount{AccountID: account.ID, Balance: decimal.NewFromInt(balance)}
	if err := f.conn.Create(&ba).Error; err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	return &account
}

func (f *engineFixture) seedVariant(t *testing.T) *models.Variant {
	t.Helper()
	product := models.Product{Name: "Japan eSIM", Status: enums.ProductStatusActive}
	if err := f.conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	variant := models.Variant{
		ProductID:   product.ID,
		ProductType: enums.ProductTypeEsim,
		ProductCode: "JP-30D",
		SKU:         "SKU-JP-30D",
		Status:      enums.VariantStatusActive,
	}
	if err := f.conn.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	return &variant
}

func (f *engineFixture) seedLot(t *testing.T, variantID uuid.UUID, qty int64) *models.StockLot {
	t.Helper()
	lot := models.StockLot{VariantID: variantID, Name: "lot", InitialQuantity: qty, Quantity: qty}
	if err := f.conn.Create(&lot).Error; err != nil {
		t.Fatalf("seed lot: %v", err)
	}
	return &lot
}

func (f *engineFixture) lotQuantity(t *testing.T, lotID uuid.UUID) int64 {
	t.Helper()
	var lot models.StockLot
	if err := f.conn.First(&lot, "id = ?", lotID).Error; err != nil {
		t.Fatalf("reload lot: %v", err)
	}
	return lot.Quantity
}

func (f *engineFixture) balance(t *testing.T, accountID uuid.UUID) decimal.Decimal {
	t.Helper()
	var ba models.BalanceAccount
	if err := f.conn.First(&ba, "account_id = ?", accountID).Error; err != nil {
		t.Fatalf("reload wallet: %v", err)
	}
	return ba.Balance
}

func (f *engineFixture) ledgerEntries(t *testing.T, orderID string) []models.BalanceLedgerEntry {
	t.Helper()
	var entries []models.BalanceLedgerEntry
	if err := f.conn.Where("order_id = ?", orderID).Order("created_at ASC").Find(&entries).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	return entries
}

func octxFor(account *models.Account) OrderContext {
	return OrderContext{AccountID: account.ID, OperatorID: account.ID, Role: account.Role}
}

func codeOf(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	return typed.Code()
}

func TestCreateWalletOrderDeductsStockAndDebitsBalance(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 1000)
	variant := f.seedVariant(t)
	lot := f.seedLot(t, variant.ID, 10)

	order, err := f.svc.Create(ctx, octxFor(account), CreateInput{
		Lines:       []LineInput{{VariantID: variant.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(100)}},
		PaymentType: enums.PaymentTypeWallet,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.Status != enums.OrderStatusPaid {
		t.Fatalf("status = %s, want PAID", order.Status)
	}
	if got := f.lotQuantity(t, lot.ID); got != 7 {
		t.Fatalf("lot quantity = %d, want 7", got)
	}
	if got := f.balance(t, account.ID); !got.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("balance = %s, want 700", got)
	}

	entries := f.ledgerEntries(t, order.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.EntryType != enums.LedgerEntryTypeConsumption {
		t.Fatalf("entry type = %s", entry.EntryType)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(-300)) ||
		!entry.BalanceBefore.Equal(decimal.NewFromInt(1000)) ||
		!entry.BalanceAfter.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("entry snapshot = %s/%s/%s", entry.Amount, entry.BalanceBefore, entry.BalanceAfter)
	}

	var line models.OrderLineItem
	if err := f.conn.First(&line, "order_id = ?", order.ID).Error; err != nil {
		t.Fatalf("load line: %v", err)
	}
	if line.UsedStock.TotalDeducted() != 3 {
		t.Fatalf("trace total = %d, want 3", line.UsedStock.TotalDeducted())
	}
	if line.ProductCode != "JP-30D" {
		t.Fatalf("product code snapshot = %q", line.ProductCode)
	}

	var eventCount int64
	if err := f.conn.Model(&models.OutboxEvent{}).Where("aggregate_id = ?", order.ID).Count(&eventCount).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("expected 1 outbox event, got %d", eventCount)
	}
}

func TestDeleteOrderRestoresStockBalanceAndLedger(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 1000)
	variant := f.seedVariant(t)
	lot := f.seedLot(t, variant.ID, 10)
	octx := octxFor(account)

	order, err := f.svc.Create(ctx, octx, CreateInput{
		Lines:       []LineInput{{VariantID: variant.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(100)}},
		PaymentType: enums.PaymentTypeWallet,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := f.svc.Delete(ctx, octx, order.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}

	if got := f.lotQuantity(t, lot.ID); got != 10 {
		t.Fatalf("lot quantity = %d, want 10", got)
	}
	if got := f.balance(t, account.ID); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance = %s, want 1000", got)
	}
	if entries := f.ledgerEntries(t, order.ID); len(entries) != 0 {
		t.Fatalf("expected no ledger entries, got %d", len(entries))
	}
	var orderCount int64
	if err := f.conn.Model(&models.Order{}).Where("id = ?", order.ID).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatal("order row should be gone")
	}
	var lineCount int64
	if err := f.conn.Model(&models.OrderLineItem{}).Where("order_id = ?", order.ID).Count(&lineCount).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lineCount != 0 {
		t.Fatal("line rows should be gone")
	}
}

func TestReservationHoldsNothingUntilConfirmed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 1000)
	variant := f.seedVariant(t)
	lot := f.seedLot(t, variant.ID, 7)
	octx := octxFor(account)

	order, err := f.svc.CreateReservation(ctx, octx, CreateInput{
		Lines:       []LineInput{{VariantID: variant.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(100)}},
		PaymentType: enums.PaymentTypeWallet,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	if order.Status != enums.OrderStatusHolding {
		t.Fatalf("status = %s, want HOLDING", order.Status)
	}
	if got := f.lotQuantity(t, lot.ID); got != 7 {
		t.Fatalf("reservation touched stock: lot = %d", got)
	}
	if entries := f.ledgerEntries(t, order.ID); len(entries) != 0 {
		t.Fatalf("reservation touched wallet: %d entries", len(entries))
	}

	confirmed, err := f.svc.ConfirmReservation(ctx, octx, order.ID)
	if err != nil {
		t.Fatalf("confirm reservation: %v", err)
	}
	if confirmed.Status != enums.OrderStatusPaid {
		t.Fatalf("status = %s, want PAID", confirmed.Status)
	}
	if got := f.lotQuantity(t, lot.ID); got != 2 {
		t.Fatalf("lot quantity = %d, want 2", got)
	}
	entries := f.ledgerEntries(t, order.ID)
	if len(entries) != 1 || entries[0].EntryType != enums.LedgerEntryTypeConsumption {
		t.Fatalf("expected one CONSUMPTION entry, got %+v", entries)
	}

	// Confirming twice must fail: the order is no longer a reservation.
	if _, err := f.svc.ConfirmReservation(ctx, octx, order.ID); codeOf(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestCreateReportsEveryShortageTogether(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 10000)
	v1 := f.seedVariant(t)
	v2 := f.seedVariant(t)
	f.seedLot(t, v1.ID, 2)
	f.seedLot(t, v2.ID, 1)

	_, err := f.svc.Create(ctx, octxFor(account), CreateInput{
		Lines: []LineInput{
			{VariantID: v1.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(100)},
			{VariantID: v2.ID, Quantity: 4, UnitPrice: decimal.NewFromInt(100)},
		},
		PaymentType: enums.PaymentTypeWallet,
	})
	if codeOf(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", pkgerrors.As(err).Details())
	}
	shortages, ok := details["shortages"].([]inventory.Shortage)
	if !ok || len(shortages) != 2 {
		t.Fatalf("expected 2 shortages, got %+v", details["shortages"])
	}

	// Nothing persisted.
	var orderCount int64
	if err := f.conn.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatal("no order should survive a shortfall")
	}
}

func TestCreateInsufficientBalanceRollsBackStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 100)
	variant := f.seedVariant(t)
	lot := f.seedLot(t, variant.ID, 10)

	_, err := f.svc.Create(ctx, octxFor(account), CreateInput{
		Lines:       []LineInput{{VariantID: variant.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(100)}},
		PaymentType: enums.PaymentTypeWallet,
	})
	if codeOf(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}

	if got := f.lotQuantity(t, lot.ID); got != 10 {
		t.Fatalf("rollback left lot at %d, want 10", got)
	}
	var orderCount int64
	if err := f.conn.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatal("no order should survive a failed debit")
	}
}

func TestNonWalletOrderSkipsLedgerAndGoesPaid(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 0)
	variant := f.seedVariant(t)
	f.seedLot(t, variant.ID, 10)

	order, err := f.svc.Create(ctx, octxFor(account), CreateInput{
		Lines:       []LineInput{{VariantID: variant.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(100)}},
		PaymentType: enums.PaymentTypeCash,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != enums.OrderStatusPaid {
		t.Fatalf("status = %s, want PAID", order.Status)
	}
	if entries := f.ledgerEntries(t, order.ID); len(entries) != 0 {
		t.Fatalf("cash order wrote %d ledger entries", len(entries))
	}
}

func TestDeleteLineRefundsAndCascadesOnLastLine(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 1000)
	v1 := f.seedVariant(t)
	v2 := f.seedVariant(t)
	lot1 := f.seedLot(t, v1.ID, 10)
	lot2 := f.seedLot(t, v2.ID, 10)
	octx := octxFor(account)

	order, err := f.svc.Create(ctx, octx, CreateInput{
		Lines: []LineInput{
			{VariantID: v1.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
			{VariantID: v2.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
		},
		PaymentType: enums.PaymentTypeWallet,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	// total 250: balance 750 after creation
	var lines []models.OrderLineItem
	if err := f.conn.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&lines).Error; err != nil {
		t.Fatalf("load lines: %v", err)
	}
	var first, second models.OrderLineItem
	for _, line := range lines {
		if line.VariantID != nil && *line.VariantID == v1.ID {
			first = line
		} else {
			second = line
		}
	}

	if err := f.svc.DeleteLine(ctx, octx, order.ID, first.ID); err != nil {
		t.Fatalf("delete first line: %v", err)
	}
	if got := f.lotQuantity(t, lot1.ID); got != 10 {
		t.Fatalf("lot1 = %d, want 10 after restore", got)
	}
	if got := f.balance(t, account.ID); !got.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("balance = %s, want 950 after 200 refund", got)
	}
	entries := f.ledgerEntries(t, order.ID)
	if len(entries) != 2 || entries[1].EntryType != enums.LedgerEntryTypeRefund {
		t.Fatalf("expected CONSUMPTION+REFUND, got %+v", entries)
	}
	remaining, err := f.svc.Get(ctx, octx, order.ID)
	if err != nil {
		t.Fatalf("order should still exist: %v", err)
	}
	if len(remaining.LineItems) != 1 {
		t.Fatalf("expected 1 line left, got %d", len(remaining.LineItems))
	}

	if err := f.svc.DeleteLine(ctx, octx, order.ID, second.ID); err != nil {
		t.Fatalf("delete second line: %v", err)
	}
	if got := f.lotQuantity(t, lot2.ID); got != 10 {
		t.Fatalf("lot2 = %d, want 10 after restore", got)
	}
	if got := f.balance(t, account.ID); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance = %s, want 1000", got)
	}
	if entries := f.ledgerEntries(t, order.ID); len(entries) != 0 {
		t.Fatalf("cascade delete left %d entries", len(entries))
	}
	if _, err := f.svc.Get(ctx, octx, order.ID); codeOf(t, err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND after cascade, got %v", err)
	}
}

func TestReservationLineEdits(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 1000)
	v1 := f.seedVariant(t)
	v2 := f.seedVariant(t)
	f.seedLot(t, v1.ID, 10)
	f.seedLot(t, v2.ID, 10)
	octx := octxFor(account)

	order, err := f.svc.CreateReservation(ctx, octx, CreateInput{
		Lines:       []LineInput{{VariantID: v1.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(100)}},
		PaymentType: enums.PaymentTypeWallet,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	updated, err := f.svc.UpdateReservationLine(ctx, octx, order.ID, order.LineItems[0].ID, 4, decimal.NewFromInt(90))
	if err != nil {
		t.Fatalf("update line: %v", err)
	}
	if updated.Quantity != 4 || !updated.UnitPrice.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("line not updated: %+v", updated)
	}

	added, err := f.svc.AddReservationLine(ctx, octx, order.ID, LineInput{VariantID: v2.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if added.ProductCode == "" {
		t.Fatal("added line should snapshot the product code")
	}

	confirmed, err := f.svc.ConfirmReservation(ctx, octx, order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	// 4*90 + 1*50 = 410
	if got := f.balance(t, account.ID); !got.Equal(decimal.NewFromInt(590)) {
		t.Fatalf("balance = %s, want 590", got)
	}

	// Edits are rejected once the reservation is confirmed.
	_, err = f.svc.UpdateReservationLine(ctx, octx, confirmed.ID, confirmed.LineItems[0].ID, 1, decimal.NewFromInt(10))
	if codeOf(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestOrderAccessIsScopedToItsAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.seedAccount(t, enums.AccountRoleUser, 1000)
	other := f.seedAccount(t, enums.AccountRolePeer, 1000)
	hq := f.seedAccount(t, enums.AccountRoleHeadquarter, 0)
	variant := f.seedVariant(t)
	f.seedLot(t, variant.ID, 10)

	order, err := f.svc.Create(ctx, octxFor(owner), CreateInput{
		Lines:       []LineInput{{VariantID: variant.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
		PaymentType: enums.PaymentTypeWallet,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := f.svc.Get(ctx, octxFor(other), order.ID); codeOf(t, err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if err := f.svc.Delete(ctx, octxFor(other), order.ID); codeOf(t, err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN on delete, got %v", err)
	}
	// Headquarter operates across accounts.
	if _, err := f.svc.Get(ctx, octxFor(hq), order.ID); err != nil {
		t.Fatalf("hq read failed: %v", err)
	}
}

func TestCreateRejectsVariantOfInactiveProduct(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 1000)

	product := models.Product{Name: "Retired eSIM", Status: enums.ProductStatusInactive}
	if err := f.conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	variant := models.Variant{
		ProductID:   product.ID,
		ProductType: enums.ProductTypeEsim,
		ProductCode: "OLD-7D",
		SKU:         "SKU-OLD-7D",
		Status:      enums.VariantStatusActive,
	}
	if err := f.conn.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	f.seedLot(t, variant.ID, 10)

	_, err := f.svc.Create(ctx, octxFor(account), CreateInput{
		Lines:       []LineInput{{VariantID: variant.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
		PaymentType: enums.PaymentTypeWallet,
	})
	if codeOf(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if got := f.balance(t, account.ID); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance = %s, want untouched 1000", got)
	}
}

func TestLastLineDeleteRefundsShippingFee(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 1000)
	variant := f.seedVariant(t)
	lot := f.seedLot(t, variant.ID, 10)
	octx := octxFor(account)

	order, err := f.svc.Create(ctx, octx, CreateInput{
		Lines:       []LineInput{{VariantID: variant.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(100)}},
		PaymentType: enums.PaymentTypeWallet,
		ShippingFee: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	// 300 goods + 50 shipping debited
	if got := f.balance(t, account.ID); !got.Equal(decimal.NewFromInt(650)) {
		t.Fatalf("balance = %s, want 650 after debit", got)
	}

	if err := f.svc.DeleteLine(ctx, octx, order.ID, order.LineItems[0].ID); err != nil {
		t.Fatalf("delete last line: %v", err)
	}
	if got := f.lotQuantity(t, lot.ID); got != 10 {
		t.Fatalf("lot = %d, want 10 after restore", got)
	}
	// The cascade refunds the shipping fee too, not just the line subtotal.
	if got := f.balance(t, account.ID); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance = %s, want 1000", got)
	}
	if _, err := f.svc.Get(ctx, octx, order.ID); codeOf(t, err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND after cascade, got %v", err)
	}
}

func TestDeleteCancelledWalletOrderStillRefunds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, enums.AccountRoleUser, 1000)
	variant := f.seedVariant(t)
	lot := f.seedLot(t, variant.ID, 10)
	octx := octxFor(account)

	order, err := f.svc.Create(ctx, octx, CreateInput{
		Lines:       []LineInput{{VariantID: variant.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(100)}},
		PaymentType: enums.PaymentTypeWallet,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	err = f.conn.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("status", enums.OrderStatusCancelled).Error
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}

	if err := f.svc.Delete(ctx, octx, order.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	// The money was debited before the cancellation, so it comes back.
	if got := f.balance(t, account.ID); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance = %s, want 1000", got)
	}
	if got := f.lotQuantity(t, lot.ID); got != 10 {
		t.Fatalf("lot = %d, want 10 after restore", got)
	}
}
