package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/simovate/simstack-backend/internal/inventory"
	"github.com/simovate/simstack-backend/internal/pricing"
	"github.com/simovate/simstack-backend/pkg/db/models"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/logger"
)

// PricedVariant is a catalogue row with the requester's resolved price and
// the live open-lot stock count attached.
type PricedVariant struct {
	Variant models.Variant `json:"variant"`
	Quote   pricing.Quote  `json:"quote"`
	Stock   int64          `json:"stock"`
}

// LotInput is the HQ stock intake payload.
type LotInput struct {
	VariantID uuid.UUID
	Name      string
	Code      *string
	Quantity  int64
}

// Service exposes catalogue reads priced per requester, plus the stock lot
// intake used by HQ.
type Service interface {
	ListVariants(ctx context.Context, requester *models.Account) ([]PricedVariant, error)
	GetVariant(ctx context.Context, id uuid.UUID, requester *models.Account) (*PricedVariant, error)
	RegisterLot(ctx context.Context, in LotInput) (*models.StockLot, error)
	ListLots(ctx context.Context, variantID uuid.UUID) ([]models.StockLot, error)
}

type service struct {
	repo      Repository
	pricingSv pricing.Service
	stock     inventory.Repository
	stockSv   inventory.Service
	logg      *logger.Logger
}

// NewService wires the catalog service.
func NewService(repo Repository, pricingSv pricing.Service, stock inventory.Repository, stockSv inventory.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if pricingSv == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if stock == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if stockSv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &service{repo: repo, pricingSv: pricingSv, stock: stock, stockSv: stockSv, logg: logg}, nil
}

func (s *service) ListVariants(ctx context.Context, requester *models.Account) ([]PricedVariant, error) {
	variants, err := s.repo.ListActiveVariants(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list variants")
	}
	out := make([]PricedVariant, 0, len(variants))
	for i := range variants {
		priced, err := s.price(ctx, &variants[i], requester)
		if err != nil {
			return nil, err
		}
		out = append(out, *priced)
	}
	return out, nil
}

func (s *service) GetVariant(ctx context.Context, id uuid.UUID, requester *models.Account) (*PricedVariant, error) {
	variant, err := s.repo.GetVariant(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get variant")
	}
	if variant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return s.price(ctx, variant, requester)
}

func (s *service) price(ctx context.Context, variant *models.Variant, requester *models.Account) (*PricedVariant, error) {
	quote, err := s.pricingSv.Resolve(ctx, variant, requester)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve price")
	}
	stock, err := s.stockSv.Available(ctx, variant.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count stock")
	}
	return &PricedVariant{Variant: *variant, Quote: quote, Stock: stock}, nil
}

func (s *service) RegisterLot(ctx context.Context, in LotInput) (*models.StockLot, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lot name required")
	}
	if in.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lot quantity must be positive")
	}
	variant, err := s.repo.GetVariant(ctx, in.VariantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get variant")
	}
	if variant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	lot := &models.StockLot{
		VariantID:       in.VariantID,
		Name:            in.Name,
		Code:            in.Code,
		InitialQuantity: in.Quantity,
		Quantity:        in.Quantity,
	}
	if err := s.stock.CreateLot(ctx, lot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create stock lot")
	}
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"variant_id": in.VariantID.String(),
			"lot_id":     lot.ID.String(),
			"quantity":   in.Quantity,
		})
		s.logg.Info(lctx, "stock lot registered")
	}
	return lot, nil
}

func (s *service) ListLots(ctx context.Context, variantID uuid.UUID) ([]models.StockLot, error) {
	lots, err := s.stock.ListByVariant(ctx, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stock lots")
	}
	return lots, nil
}
