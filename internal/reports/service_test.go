package reports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/pkg/db/models"
	dbtypes "github.com/simovate/simstack-backend/pkg/db/types"
	"github.com/simovate/simstack-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Product{},
		&models.Variant{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.DailySalesReport{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
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

func seedPaidOrder(t *testing.T, conn *gorm.DB, accountID uuid.UUID, source enums.OrderSource, productType enums.ProductType, qty, unitPrice, shippingFee int64, createdAt time.Time) *models.Order {
	t.Helper()
	product := models.Product{Name: "product", Status: enums.ProductStatusActive}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	variant := models.Variant{
		ProductID:   product.ID,
		ProductType: productType,
		ProductCode: "CODE",
		SKU:         "SKU-" + uuid.NewString()[:8],
		Status:      enums.VariantStatusActive,
	}
	if err := conn.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	order := models.Order{
		ID:          models.NewOrderID(createdAt),
		AccountID:   accountID,
		CreatedByID: accountID,
		Status:      enums.OrderStatusPaid,
		PaymentType: enums.PaymentTypeWallet,
		Source:      source,
		ShippingFee: decimal.NewFromInt(shippingFee),
		CreatedAt:   createdAt,
		LineItems: []models.OrderLineItem{{
			VariantID:   &variant.ID,
			ProductCode: variant.ProductCode,
			UnitPrice:   decimal.NewFromInt(unitPrice),
			Quantity:    qty,
			UsedStock:   dbtypes.DeductionTrace{},
			Status:      enums.LineItemStatusNormal,
		}},
	}
	if err := conn.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return &order
}

func TestRecomputeAggregatesPaidOrders(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	accountID := uuid.New()
	now := time.Now().UTC()

	seedPaidOrder(t, conn, accountID, enums.OrderSourceERP, enums.ProductTypeEsim, 2, 100, 0, now)
	seedPaidOrder(t, conn, accountID, enums.OrderSourceShopee, enums.ProductTypePhysicalCard, 3, 50, 20, now)
	// Another account's order must not leak into the rollup.
	seedPaidOrder(t, conn, uuid.New(), enums.OrderSourceERP, enums.ProductTypeEsim, 1, 999, 0, now)
	// Yesterday's order belongs to a different report row.
	seedPaidOrder(t, conn, accountID, enums.OrderSourceERP, enums.ProductTypeEsim, 1, 10, 0, now.Add(-48*time.Hour))

	report, err := svc.Recompute(ctx, accountID, now)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}

	// 2*100 + (3*50 + 20) = 370
	if !report.Revenue.Equal(decimal.NewFromInt(370)) {
		t.Fatalf("revenue = %s, want 370", report.Revenue)
	}
	if report.OrderCount != 2 {
		t.Fatalf("order count = %d, want 2", report.OrderCount)
	}
	if report.ProductSoldCount != 5 {
		t.Fatalf("product sold = %d, want 5", report.ProductSoldCount)
	}

	var byType map[string]int64
	if err := json.Unmarshal(report.ByProductType, &byType); err != nil {
		t.Fatalf("decode by_product_type: %v", err)
	}
	if byType["ESIM"] != 2 || byType["PHYSICAL_CARD"] != 3 {
		t.Fatalf("by_product_type = %v", byType)
	}
	var bySource map[string]int64
	if err := json.Unmarshal(report.BySource, &bySource); err != nil {
		t.Fatalf("decode by_source: %v", err)
	}
	if bySource["ERP"] != 1 || bySource["SHOPEE"] != 1 {
		t.Fatalf("by_source = %v", bySource)
	}
}

func TestRecomputeIsIdempotentAndUpsertsOneRow(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	accountID := uuid.New()
	now := time.Now().UTC()

	seedPaidOrder(t, conn, accountID, enums.OrderSourceERP, enums.ProductTypeEsim, 1, 100, 0, now)
	if _, err := svc.Recompute(ctx, accountID, now); err != nil {
		t.Fatalf("first recompute: %v", err)
	}

	seedPaidOrder(t, conn, accountID, enums.OrderSourceERP, enums.ProductTypeEsim, 1, 100, 0, now)
	report, err := svc.Recompute(ctx, accountID, now)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if report.OrderCount != 2 {
		t.Fatalf("order count = %d, want 2", report.OrderCount)
	}

	var rows int64
	if err := conn.Model(&models.DailySalesReport{}).Count(&rows).Error; err != nil {
		t.Fatalf("count reports: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 report row, got %d", rows)
	}
}

func TestFinalizeFreezesReports(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	accountID := uuid.New()
	now := time.Now().UTC()

	seedPaidOrder(t, conn, accountID, enums.OrderSourceERP, enums.ProductTypeEsim, 1, 100, 0, now)

	finalized, err := svc.Finalize(ctx, now)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if finalized != 1 {
		t.Fatalf("finalized = %d, want 1", finalized)
	}

	report, err := svc.Get(ctx, accountID, now)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if !report.IsFinalized {
		t.Fatal("report should be finalized")
	}

	// Later orders no longer change the frozen row.
	seedPaidOrder(t, conn, accountID, enums.OrderSourceERP, enums.ProductTypeEsim, 5, 100, 0, now)
	after, err := svc.Recompute(ctx, accountID, now)
	if err != nil {
		t.Fatalf("recompute after finalize: %v", err)
	}
	if after.OrderCount != 1 {
		t.Fatalf("finalized report mutated: order count = %d", after.OrderCount)
	}
}

func TestDailyReportJobFinalizesYesterday(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	accountID := uuid.New()
	yesterday := time.Now().UTC().Add(-24 * time.Hour)

	seedPaidOrder(t, conn, accountID, enums.OrderSourceERP, enums.ProductTypeEsim, 2, 100, 0, yesterday)

	job, err := NewDailyReportJob(svc)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if job.Name() != "daily-sales-report" {
		t.Fatalf("job name = %q", job.Name())
	}
	if err := job.Run(ctx); err != nil {
		t.Fatalf("run job: %v", err)
	}

	report, err := svc.Get(ctx, accountID, yesterday)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if !report.IsFinalized || report.OrderCount != 1 {
		t.Fatalf("unexpected report: finalized=%v count=%d", report.IsFinalized, report.OrderCount)
	}
}
