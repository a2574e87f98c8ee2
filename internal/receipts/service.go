package receipts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/internal/accounts"
	"github.com/simovate/simstack-backend/internal/catalog"
	"github.com/simovate/simstack-backend/internal/orders"
	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/logger"
	"github.com/simovate/simstack-backend/pkg/pagination"
)

const shippingFeeItemName = "Shipping Fee"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ManualItemInput is one printed line on a manually entered receipt.
type ManualItemInput struct {
	ProductName string
	ProductCode *string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// ManualInput creates a receipt that has no backing order.
type ManualInput struct {
	ReceiptTo  string
	TaxID      *string
	IssuedDate time.Time
	Items      []ManualItemInput
}

// Service issues receipts. Order receipts are generated exactly once per
// order; redelivered events find the existing document.
type Service interface {
	BuildFromOrder(ctx context.Context, orderID string) (*models.Receipt, error)
	CreateManual(ctx context.Context, in ManualInput) (*models.Receipt, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Receipt, error)
	List(ctx context.Context, params pagination.Params) ([]models.Receipt, string, error)
}

type service struct {
	runner   txRunner
	repo     Repository
	orders   orders.Repository
	accounts accounts.Service
	catalog  catalog.Repository
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the receipt generator.
func NewService(runner txRunner, repo Repository, ordersRepo orders.Repository, accountsSv accounts.Service, catalogRepo catalog.Repository, logg *logger.Logger) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("receipts repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if accountsSv == nil {
		return nil, fmt.Errorf("accounts service required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{
		runner:   runner,
		repo:     repo,
		orders:   ordersRepo,
		accounts: accountsSv,
		catalog:  catalogRepo,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// BuildFromOrder issues the receipt for an order: one item per line plus a
// shipping fee item when the order carries one.
func (s *service) BuildFromOrder(ctx context.Context, orderID string) (*models.Receipt, error) {
	existing, err := s.repo.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find receipt")
	}
	if existing != nil {
		return existing, nil
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	account, err := s.accounts.Get(ctx, order.AccountID)
	if err != nil {
		return nil, err
	}
	names, err := s.variantNames(ctx, order.LineItems)
	if err != nil {
		return nil, err
	}

	var receipt *models.Receipt
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// The order may have been receipted by a concurrent delivery.
		existing, err := repo.GetByOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find receipt")
		}
		if existing != nil {
			receipt = existing
			return nil
		}

		issued := dateOf(s.now())
		number, err := s.nextNumber(ctx, repo, issued)
		if err != nil {
			return err
		}

		receipt = &models.Receipt{
			Number:     number,
			Type:       enums.ReceiptTypeOrder,
			ReceiptTo:  account.ReceiptName(),
			TaxID:      account.TaxID,
			OrderID:    &order.ID,
			IssuedDate: issued,
		}
		for i := range order.LineItems {
			line := &order.LineItems[i]
			name := names[line.ID]
			if name == "" {
				name = line.ProductCode
			}
			code := line.ProductCode
			receipt.Items = append(receipt.Items, models.ReceiptItem{
				ProductName: name,
				ProductCode: &code,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
			})
		}
		if order.ShippingFee.Sign() > 0 {
			receipt.Items = append(receipt.Items, models.ReceiptItem{
				ProductName: shippingFeeItemName,
				Quantity:    1,
				UnitPrice:   order.ShippingFee,
			})
		}
		if err := repo.Create(ctx, receipt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create receipt")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		lctx := s.logg.WithOrderID(ctx, orderID)
		s.logg.Info(s.logg.WithField(lctx, "receipt_number", receipt.Number), "receipt issued")
	}
	return receipt, nil
}

func (s *service) CreateManual(ctx context.Context, in ManualInput) (*models.Receipt, error) {
	if strings.TrimSpace(in.ReceiptTo) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt_to is required")
	}
	if len(in.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.ProductName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product name is required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice.Sign() < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item unit price cannot be negative")
		}
	}

	issued := in.IssuedDate
	if issued.IsZero() {
		issued = s.now()
	}
	issued = dateOf(issued)

	var receipt *models.Receipt
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		number, err := s.nextNumber(ctx, repo, issued)
		if err != nil {
			return err
		}
		receipt = &models.Receipt{
			Number:     number,
			Type:       enums.ReceiptTypeManual,
			ReceiptTo:  in.ReceiptTo,
			TaxID:      in.TaxID,
			IssuedDate: issued,
		}
		for _, item := range in.Items {
			receipt.Items = append(receipt.Items, models.ReceiptItem{
				ProductName: item.ProductName,
				ProductCode: item.ProductCode,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			})
		}
		if err := repo.Create(ctx, receipt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create receipt")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	receipt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get receipt")
	}
	if receipt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receipt not found")
	}
	return receipt, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Receipt, string, error) {
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list receipts")
	}
	return rows, next, nil
}

// nextNumber builds R<YYYYMMDD><seq>, where seq restarts daily. The unique
// index on number rejects the loser of a same-instant race.
func (s *service) nextNumber(ctx context.Context, repo Repository, issued time.Time) (string, error) {
	count, err := repo.CountForDate(ctx, issued)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count receipts")
	}
	return fmt.Sprintf("R%s%03d", issued.Format("20060102"), count+1), nil
}

func (s *service) variantNames(ctx context.Context, lines []models.OrderLineItem) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for i := range lines {
		if lines[i].VariantID != nil {
			ids = append(ids, *lines[i].VariantID)
		}
	}
	names := make(map[uuid.UUID]string, len(lines))
	if len(ids) == 0 {
		return names, nil
	}
	variants, err := s.catalog.GetVariantsByID(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variants")
	}
	for i := range lines {
		line := &lines[i]
		if line.VariantID == nil {
			continue
		}
		if variant, ok := variants[*line.VariantID]; ok && variant.Product != nil {
			names[line.ID] = variant.Product.Name
		}
	}
	return names, nil
}

func dateOf(ts time.Time) time.Time {
	year, month, day := ts.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
