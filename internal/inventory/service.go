package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	dbtypes "github.com/simovate/simstack-backend/pkg/db/types"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/logger"
)

// Shortage describes an unfillable quantity for one variant.
type Shortage struct {
	VariantID uuid.UUID `json:"variant_id"`
	Requested int64     `json:"requested"`
	Available int64     `json:"available"`
}

// Service is the FIFO stock lot ledger. Deduct and Restore run inside the
// caller's transaction so fulfillment stays atomic with the order rows.
type Service interface {
	Deduct(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int64) (dbtypes.DeductionTrace, error)
	Restore(ctx context.Context, tx *gorm.DB, trace dbtypes.DeductionTrace) error
	Available(ctx context.Context, variantID uuid.UUID) (int64, error)
	AvailableForUpdate(ctx context.Context, tx *gorm.DB, variantID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires an inventory service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Deduct consumes qty units from the variant's open lots, oldest first, and
// returns the per-lot trace. A shortfall fails the whole call; the caller's
// transaction rollback discards any partial lot updates.
func (s *service) Deduct(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int64) (dbtypes.DeductionTrace, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deduction quantity must be positive")
	}

	repo := s.repo.WithTx(tx)
	lots, err := repo.LockOpenLots(ctx, variantID)
	if err != nil {
		return nil, err
	}

	remaining := qty
	trace := make(dbtypes.DeductionTrace, 0, len(lots))
	now := time.Now()

	for i := range lots {
		if remaining == 0 {
			break
		}
		lot := &lots[i]
		take := lot.Quantity
		if take > remaining {
			take = remaining
		}

		trace = append(trace, dbtypes.DeductionEntry{
			StockLotID:       lot.ID,
			DeductedQuantity: take,
			QuantityBefore:   lot.Quantity,
		})

		lot.Quantity -= take
		if lot.Quantity == 0 {
			lot.IsUsed = true
			exchangeTime := now
			lot.ExchangeTime = &exchangeTime
		}
		if err := repo.SaveLot(ctx, lot); err != nil {
			return nil, err
		}
		remaining -= take
	}

	if remaining > 0 {
		available := qty - remaining
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
			WithDetails(map[string]any{
				"shortages": []Shortage{{VariantID: variantID, Requested: qty, Available: available}},
			})
	}
	return trace, nil
}

// Restore replays a deduction trace in order, adding quantities back to their
// lots. Lots that no longer exist are skipped; the remaining entries still
// restore. DB failures abort.
func (s *service) Restore(ctx context.Context, tx *gorm.DB, trace dbtypes.DeductionTrace) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}

	repo := s.repo.WithTx(tx)
	var skipped error

	for _, entry := range trace {
		lot, err := repo.LockLot(ctx, entry.StockLotID)
		if err != nil {
			return err
		}
		if lot == nil {
			skipped = multierr.Append(skipped, fmt.Errorf("stock lot %s no longer exists", entry.StockLotID))
			continue
		}

		lot.Quantity += entry.DeductedQuantity
		if lot.Quantity > 0 {
			lot.IsUsed = false
			lot.ExchangeTime = nil
		}
		if err := repo.SaveLot(ctx, lot); err != nil {
			return err
		}
	}

	if skipped != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("restore skipped missing lots: %v", skipped))
	}
	return nil
}

func (s *service) Available(ctx context.Context, variantID uuid.UUID) (int64, error) {
	return s.repo.SumOpen(ctx, variantID)
}

// AvailableForUpdate locks the variant's open lots and returns their total.
// Used by the order engine's pre-checks so availability cannot change under
// a running checkout.
func (s *service) AvailableForUpdate(ctx context.Context, tx *gorm.DB, variantID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction required")
	}
	lots, err := s.repo.WithTx(tx).LockOpenLots(ctx, variantID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, lot := range lots {
		total += lot.Quantity
	}
	return total, nil
}
