package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simovate/simstack-backend/pkg/db/models"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/logger"
)

// Service is the read-side sales rollup. Reports stay recomputable until the
// cron worker finalizes them at the end of the day.
type Service interface {
	Recompute(ctx context.Context, accountID uuid.UUID, date time.Time) (*models.DailySalesReport, error)
	Finalize(ctx context.Context, date time.Time) (int, error)
	Get(ctx context.Context, accountID uuid.UUID, date time.Time) (*models.DailySalesReport, error)
	ListForAccount(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]models.DailySalesReport, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the reporting service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Recompute rebuilds the (account, day) rollup from the paid orders of that
// day. Finalized reports are immutable and returned unchanged.
func (s *service) Recompute(ctx context.Context, accountID uuid.UUID, date time.Time) (*models.DailySalesReport, error) {
	day := DateOf(date)

	existing, err := s.repo.Get(ctx, accountID, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get report")
	}
	if existing != nil && existing.IsFinalized {
		return existing, nil
	}

	orders, err := s.repo.PaidOrdersForDay(ctx, accountID, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load paid orders")
	}

	revenue := decimal.Zero
	var productSold int64
	byProductType := map[string]int64{}
	bySource := map[string]int64{}
	for i := range orders {
		order := &orders[i]
		revenue = revenue.Add(order.TotalAmount())
		bySource[order.Source.String()]++
		for j := range order.LineItems {
			line := &order.LineItems[j]
			productSold += line.Quantity
			productType := "UNKNOWN"
			if line.Variant != nil {
				productType = line.Variant.ProductType.String()
			}
			byProductType[productType] += line.Quantity
		}
	}

	byProductTypeJSON, err := json.Marshal(byProductType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode product type breakdown")
	}
	bySourceJSON, err := json.Marshal(bySource)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode source breakdown")
	}

	report := &models.DailySalesReport{
		AccountID:        accountID,
		Date:             day,
		Revenue:          revenue,
		OrderCount:       int64(len(orders)),
		ProductSoldCount: productSold,
		ByProductType:    byProductTypeJSON,
		BySource:         bySourceJSON,
	}
	if existing != nil {
		report.ID = existing.ID
	}
	if err := s.repo.Upsert(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert report")
	}
	return report, nil
}

// Finalize recomputes and freezes every account's report for the given day.
// It returns the number of reports finalized.
func (s *service) Finalize(ctx context.Context, date time.Time) (int, error) {
	day := DateOf(date)
	accountIDs, err := s.repo.AccountsWithOrdersOn(ctx, day)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list accounts with orders")
	}

	finalized := 0
	for _, accountID := range accountIDs {
		if _, err := s.Recompute(ctx, accountID, day); err != nil {
			return finalized, err
		}
		if err := s.repo.MarkFinalized(ctx, accountID, day); err != nil {
			return finalized, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize report")
		}
		finalized++
	}
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"date":      day.Format("2006-01-02"),
			"finalized": finalized,
		})
		s.logg.Info(lctx, "daily sales reports finalized")
	}
	return finalized, nil
}

func (s *service) Get(ctx context.Context, accountID uuid.UUID, date time.Time) (*models.DailySalesReport, error) {
	report, err := s.repo.Get(ctx, accountID, DateOf(date))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get report")
	}
	if report == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
	}
	return report, nil
}

func (s *service) ListForAccount(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]models.DailySalesReport, error) {
	rows, err := s.repo.ListForAccount(ctx, accountID, DateOf(from), DateOf(to))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reports")
	}
	return rows, nil
}

// DateOf truncates a timestamp to its UTC calendar day.
func DateOf(ts time.Time) time.Time {
	year, month, day := ts.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
