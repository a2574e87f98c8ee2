package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
)

// Quote is what a given account pays for a variant. A zero quote (zero
// display price, no original, no discount) means the caller has no resolvable
// price; it is not an error.
type Quote struct {
	DisplayPrice  decimal.Decimal  `json:"display_price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	HasDiscount   bool             `json:"has_discount"`
}

// Service resolves role-based prices.
type Service interface {
	Resolve(ctx context.Context, variant *models.Variant, account *models.Account) (Quote, error)
}

type service struct {
	repo Repository
}

// NewService wires a pricing service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo}, nil
}

// pricePair selects the (base, sale) column pair for a role. Distributor
// pricing is per-agent and resolved separately.
func pricePair(variant *models.Variant, role enums.AccountRole) (base, sale *decimal.Decimal) {
	switch role {
	case enums.AccountRoleAgent:
		return variant.PriceAgent, variant.SalePriceAgent
	case enums.AccountRolePeer:
		return variant.PricePeer, variant.SalePricePeer
	default:
		return variant.Price, variant.SalePrice
	}
}

func (s *service) Resolve(ctx context.Context, variant *models.Variant, account *models.Account) (Quote, error) {
	if variant == nil || account == nil {
		return Quote{DisplayPrice: decimal.Zero}, nil
	}

	if account.Role == enums.AccountRoleDistributor {
		return s.resolveDistributor(ctx, variant, account)
	}

	base, sale := pricePair(variant, account.Role)
	return buildQuote(base, sale), nil
}

// resolveDistributor looks up the price pair on the (variant, parent agent)
// row. The parent must be loaded and must be an agent; any gap in the chain
// collapses to the zero quote.
func (s *service) resolveDistributor(ctx context.Context, variant *models.Variant, account *models.Account) (Quote, error) {
	if account.ParentID == nil {
		return Quote{DisplayPrice: decimal.Zero}, nil
	}
	if account.Parent == nil || account.Parent.Role != enums.AccountRoleAgent {
		return Quote{DisplayPrice: decimal.Zero}, nil
	}

	row, err := s.repo.GetDistributorPricing(ctx, variant.ID, *account.ParentID)
	if err != nil {
		return Quote{}, err
	}
	if row == nil {
		return Quote{DisplayPrice: decimal.Zero}, nil
	}
	return buildQuote(row.PriceDistributor, row.SalePriceDistributor), nil
}

// buildQuote folds a (base, sale) pair into a quote. A sale price that is
// unset or not positive is treated as absent.
func buildQuote(base, sale *decimal.Decimal) Quote {
	switch {
	case sale != nil && sale.IsPositive():
		quote := Quote{DisplayPrice: *sale}
		if base != nil {
			original := *base
			quote.OriginalPrice = &original
			quote.HasDiscount = sale.LessThan(*base)
		}
		return quote
	case base != nil:
		return Quote{DisplayPrice: *base}
	default:
		return Quote{DisplayPrice: decimal.Zero}
	}
}
