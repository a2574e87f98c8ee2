package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/pkg/db/models"
	dbtypes "github.com/simovate/simstack-backend/pkg/db/types"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.StockLot{}); err != nil {
		t.Fatalf("migrate stock lots: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedLot(t *testing.T, conn *gorm.DB, variantID uuid.UUID, qty int64, createdAt time.Time) uuid.UUID {
	t.Helper()
	lot := models.StockLot{
		VariantID:       variantID,
		Name:            "lot",
		InitialQuantity: qty,
		Quantity:        qty,
		CreatedAt:       createdAt,
	}
	if err := conn.Create(&lot).Error; err != nil {
		t.Fatalf("seed lot: %v", err)
	}
	return lot.ID
}

func TestDeductConsumesOldestLotsFirst(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	variantID := uuid.New()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	oldLot := seedLot(t, conn, variantID, 3, base)
	newLot := seedLot(t, conn, variantID, 10, base.Add(time.Hour))

	var trace dbtypes.DeductionTrace
	err := conn.Transaction(func(tx *gorm.DB) error {
		var terr error
		trace, terr = svc.Deduct(ctx, tx, variantID, 5)
		return terr
	})
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}

	if len(trace) != 2 {
		t.Fatalf("expected 2 trace entries, got %d", len(trace))
	}
	if trace[0].StockLotID != oldLot || trace[0].DeductedQuantity != 3 || trace[0].QuantityBefore != 3 {
		t.Fatalf("first entry should drain the oldest lot: %+v", trace[0])
	}
	if trace[1].StockLotID != newLot || trace[1].DeductedQuantity != 2 || trace[1].QuantityBefore != 10 {
		t.Fatalf("second entry should take the remainder: %+v", trace[1])
	}

	var drained, partial models.StockLot
	if err := conn.First(&drained, "id = ?", oldLot).Error; err != nil {
		t.Fatalf("load drained lot: %v", err)
	}
	if drained.Quantity != 0 || !drained.IsUsed || drained.ExchangeTime == nil {
		t.Fatalf("drained lot not closed out: %+v", drained)
	}
	if err := conn.First(&partial, "id = ?", newLot).Error; err != nil {
		t.Fatalf("load partial lot: %v", err)
	}
	if partial.Quantity != 8 || partial.IsUsed {
		t.Fatalf("partial lot state wrong: %+v", partial)
	}
}

func TestDeductShortfallRollsBackEverything(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	variantID := uuid.New()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	seedLot(t, conn, variantID, 2, base)
	seedLot(t, conn, variantID, 1, base.Add(time.Hour))

	err := conn.Transaction(func(tx *gorm.DB) error {
		_, terr := svc.Deduct(ctx, tx, variantID, 5)
		return terr
	})
	if err == nil {
		t.Fatal("expected shortfall error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("details missing: %v", typed.Details())
	}
	shortages, ok := details["shortages"].([]Shortage)
	if !ok || len(shortages) != 1 {
		t.Fatalf("shortages missing: %v", details)
	}
	if shortages[0].Requested != 5 || shortages[0].Available != 3 {
		t.Fatalf("shortage figures wrong: %+v", shortages[0])
	}

	// The rollback must leave the lots untouched.
	var lots []models.StockLot
	if err := conn.Where("variant_id = ?", variantID).Order("created_at ASC").Find(&lots).Error; err != nil {
		t.Fatalf("load lots: %v", err)
	}
	if lots[0].Quantity != 2 || lots[1].Quantity != 1 || lots[0].IsUsed || lots[1].IsUsed {
		t.Fatalf("lots mutated after rollback: %+v", lots)
	}
}

func TestRestoreReplaysTraceExactly(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	variantID := uuid.New()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	lotA := seedLot(t, conn, variantID, 3, base)
	lotB := seedLot(t, conn, variantID, 10, base.Add(time.Hour))

	var trace dbtypes.DeductionTrace
	if err := conn.Transaction(func(tx *gorm.DB) error {
		var terr error
		trace, terr = svc.Deduct(ctx, tx, variantID, 5)
		return terr
	}); err != nil {
		t.Fatalf("deduct: %v", err)
	}

	if err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Restore(ctx, tx, trace)
	}); err != nil {
		t.Fatalf("restore: %v", err)
	}

	var a, b models.StockLot
	if err := conn.First(&a, "id = ?", lotA).Error; err != nil {
		t.Fatalf("load lot a: %v", err)
	}
	if err := conn.First(&b, "id = ?", lotB).Error; err != nil {
		t.Fatalf("load lot b: %v", err)
	}
	if a.Quantity != 3 || a.IsUsed || a.ExchangeTime != nil {
		t.Fatalf("drained lot not reopened: %+v", a)
	}
	if b.Quantity != 10 || b.IsUsed {
		t.Fatalf("partial lot not restored: %+v", b)
	}

	available, err := svc.Available(ctx, variantID)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if available != 13 {
		t.Fatalf("available = %d, want 13", available)
	}
}

func TestRestoreSkipsMissingLots(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	variantID := uuid.New()

	lot := seedLot(t, conn, variantID, 0, time.Now())
	if err := conn.Model(&models.StockLot{}).Where("id = ?", lot).
		Updates(map[string]any{"is_used": true}).Error; err != nil {
		t.Fatalf("drain lot: %v", err)
	}

	trace := dbtypes.DeductionTrace{
		{StockLotID: uuid.New(), DeductedQuantity: 4, QuantityBefore: 4},
		{StockLotID: lot, DeductedQuantity: 2, QuantityBefore: 2},
	}
	if err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Restore(ctx, tx, trace)
	}); err != nil {
		t.Fatalf("restore with missing lot: %v", err)
	}

	var restored models.StockLot
	if err := conn.First(&restored, "id = ?", lot).Error; err != nil {
		t.Fatalf("load lot: %v", err)
	}
	if restored.Quantity != 2 || restored.IsUsed {
		t.Fatalf("surviving entry not restored: %+v", restored)
	}
}

func TestAvailableForUpdateSumsOpenLots(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	variantID := uuid.New()

	seedLot(t, conn, variantID, 4, time.Now())
	seedLot(t, conn, variantID, 6, time.Now())
	drained := seedLot(t, conn, variantID, 0, time.Now())
	if err := conn.Model(&models.StockLot{}).Where("id = ?", drained).
		Updates(map[string]any{"is_used": true}).Error; err != nil {
		t.Fatalf("drain lot: %v", err)
	}

	if err := conn.Transaction(func(tx *gorm.DB) error {
		total, terr := svc.AvailableForUpdate(ctx, tx, variantID)
		if terr != nil {
			return terr
		}
		if total != 10 {
			t.Fatalf("total = %d, want 10", total)
		}
		return nil
	}); err != nil {
		t.Fatalf("available for update: %v", err)
	}
}
