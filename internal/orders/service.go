package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/internal/accounts"
	"github.com/simovate/simstack-backend/internal/catalog"
	"github.com/simovate/simstack-backend/internal/inventory"
	"github.com/simovate/simstack-backend/internal/wallet"
	"github.com/simovate/simstack-backend/pkg/db/models"
	dbtypes "github.com/simovate/simstack-backend/pkg/db/types"
	"github.com/simovate/simstack-backend/pkg/enums"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/logger"
	"github.com/simovate/simstack-backend/pkg/outbox"
	"github.com/simovate/simstack-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the order engine. Every mutating call runs as one transaction
// and takes its row locks in a fixed order: stock lots first (oldest lot
// first), then the balance account row.
type Service interface {
	Create(ctx context.Context, octx OrderContext, in CreateInput) (*models.Order, error)
	CreateReservation(ctx context.Context, octx OrderContext, in CreateInput) (*models.Order, error)
	ConfirmReservation(ctx context.Context, octx OrderContext, orderID string) (*models.Order, error)
	UpdateReservationLine(ctx context.Context, octx OrderContext, orderID string, lineID uuid.UUID, quantity int64, unitPrice decimal.Decimal) (*models.OrderLineItem, error)
	AddReservationLine(ctx context.Context, octx OrderContext, orderID string, in LineInput) (*models.OrderLineItem, error)
	DeleteLine(ctx context.Context, octx OrderContext, orderID string, lineID uuid.UUID) error
	Delete(ctx context.Context, octx OrderContext, orderID string) error
	Get(ctx context.Context, octx OrderContext, orderID string) (*models.Order, error)
	List(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
}

type service struct {
	runner   txRunner
	repo     Repository
	catalog  catalog.Repository
	accounts accounts.Service
	stock    inventory.Service
	wallet   wallet.Service
	events   outboxPublisher
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the order engine.
func NewService(
	runner txRunner,
	repo Repository,
	catalogRepo catalog.Repository,
	accountsSv accounts.Service,
	stock inventory.Service,
	walletSv wallet.Service,
	events outboxPublisher,
	logg *logger.Logger,
) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if accountsSv == nil {
		return nil, fmt.Errorf("accounts service required")
	}
	if stock == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if walletSv == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		runner:   runner,
		repo:     repo,
		catalog:  catalogRepo,
		accounts: accountsSv,
		stock:    stock,
		wallet:   walletSv,
		events:   events,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Create is the direct purchase path. Availability is checked for every
// line before any lot is touched so a shortfall reports all short variants
// together, not just the first one.
func (s *service) Create(ctx context.Context, octx OrderContext, in CreateInput) (*models.Order, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.accounts.GetActive(ctx, octx.AccountID); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		variants, err := s.checkVariants(ctx, tx, in.Lines)
		if err != nil {
			return err
		}
		if err := s.checkStock(ctx, tx, in.Lines); err != nil {
			return err
		}

		order = buildOrder(octx, in, variants, s.now())
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		if err := s.fulfill(ctx, tx, repo, order); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventOrderCreated, octx, order)
	})
	if err != nil {
		return nil, err
	}
	s.logOrder(ctx, order, "order created")
	return order, nil
}

// CreateReservation records the desired lines without touching stock or the
// wallet. The order stays HOLDING and its traces stay empty until confirmed.
func (s *service) CreateReservation(ctx context.Context, octx OrderContext, in CreateInput) (*models.Order, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.accounts.GetActive(ctx, octx.AccountID); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		variants, err := s.checkVariants(ctx, tx, in.Lines)
		if err != nil {
			return err
		}
		order = buildOrder(octx, in, variants, s.now())
		order.Status = enums.OrderStatusHolding
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logOrder(ctx, order, "reservation created")
	return order, nil
}

// ConfirmReservation re-validates availability for every line, then performs
// the deduction and wallet debit the reservation deferred. Reservations do
// not hold stock, so confirmation can still fail with a shortfall.
func (s *service) ConfirmReservation(ctx context.Context, octx OrderContext, orderID string) (*models.Order, error) {
	var order *models.Order
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = s.lockOrder(ctx, repo, octx, orderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusHolding {
			return invalidState(order.Status, "only reservations can be confirmed")
		}
		if err := s.checkStock(ctx, tx, lineInputs(order.LineItems)); err != nil {
			return err
		}
		if err := s.fulfill(ctx, tx, repo, order); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventOrderPaid, octx, order)
	})
	if err != nil {
		return nil, err
	}
	s.logOrder(ctx, order, "reservation confirmed")
	return order, nil
}

func (s *service) UpdateReservationLine(ctx context.Context, octx OrderContext, orderID string, lineID uuid.UUID, quantity int64, unitPrice decimal.Decimal) (*models.OrderLineItem, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if unitPrice.Sign() < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	var line *models.OrderLineItem
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, octx, orderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusHolding {
			return invalidState(order.Status, "lines can only be edited on reservations")
		}
		line = findLine(order.LineItems, lineID)
		if line == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
		}
		line.Quantity = quantity
		line.UnitPrice = unitPrice
		if err := repo.SaveLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *service) AddReservationLine(ctx context.Context, octx OrderContext, orderID string, in LineInput) (*models.OrderLineItem, error) {
	if err := validateLine(in); err != nil {
		return nil, err
	}

	var line *models.OrderLineItem
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, octx, orderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusHolding {
			return invalidState(order.Status, "lines can only be added to reservations")
		}
		variants, err := s.checkVariants(ctx, tx, []LineInput{in})
		if err != nil {
			return err
		}
		line = buildLine(order.ID, in, variants[in.VariantID])
		if err := repo.CreateLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteLine removes one line and undoes its side effects: the stock trace
// is replayed back into the lots and, when the wallet was debited, the line
// subtotal is refunded. Deleting the last line deletes the whole order and
// refunds the shipping fee with it.
func (s *service) DeleteLine(ctx context.Context, octx OrderContext, orderID string, lineID uuid.UUID) error {
	return s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, octx, orderID)
		if err != nil {
			return err
		}
		switch order.Status {
		case enums.OrderStatusPending, enums.OrderStatusPaid, enums.OrderStatusWait, enums.OrderStatusHolding:
		default:
			return invalidState(order.Status, "lines cannot be removed in this state")
		}
		line := findLine(order.LineItems, lineID)
		if line == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
		}

		if len(line.UsedStock) > 0 {
			if err := s.stock.Restore(ctx, tx, line.UsedStock); err != nil {
				return err
			}
		}
		if walletDebited(order) {
			_, err := s.wallet.Credit(ctx, tx, order.AccountID, line.Subtotal(), order.ID, enums.LedgerEntryTypeRefund, "order line removed")
			if err != nil {
				return err
			}
		}
		if err := repo.DeleteLine(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete line")
		}

		remaining, err := repo.CountLines(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count lines")
		}
		if remaining > 0 {
			return nil
		}
		// An order with zero lines is not a valid persistent state. The
		// shipping fee was debited with the goods, so it leaves with the
		// last line.
		if walletDebited(order) && order.ShippingFee.IsPositive() {
			_, err := s.wallet.Credit(ctx, tx, order.AccountID, order.ShippingFee, order.ID, enums.LedgerEntryTypeRefund, "order deleted")
			if err != nil {
				return err
			}
		}
		if err := s.wallet.DeleteEntriesForOrder(ctx, tx, order.ID); err != nil {
			return err
		}
		if err := repo.DeleteOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
		}
		return s.emit(ctx, tx, enums.EventOrderDeleted, octx, order)
	})
}

// Delete is the full compensating transaction: every trace is restored, a
// debited wallet is refunded in one entry, and the order's ledger entries,
// lines, and row are removed.
func (s *service) Delete(ctx context.Context, octx OrderContext, orderID string) error {
	return s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, octx, orderID)
		if err != nil {
			return err
		}
		switch order.Status {
		case enums.OrderStatusPending, enums.OrderStatusCancelled, enums.OrderStatusPaid:
		default:
			return invalidState(order.Status, "order cannot be deleted in this state")
		}

		for i := range order.LineItems {
			if len(order.LineItems[i].UsedStock) == 0 {
				continue
			}
			if err := s.stock.Restore(ctx, tx, order.LineItems[i].UsedStock); err != nil {
				return err
			}
		}
		if walletDebited(order) {
			_, err := s.wallet.Credit(ctx, tx, order.AccountID, order.TotalAmount(), order.ID, enums.LedgerEntryTypeRefund, "order deleted")
			if err != nil {
				return err
			}
		}
		if err := s.wallet.DeleteEntriesForOrder(ctx, tx, order.ID); err != nil {
			return err
		}
		if err := repo.DeleteLinesByOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete lines")
		}
		if err := repo.DeleteOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
		}
		return s.emit(ctx, tx, enums.EventOrderDeleted, octx, order)
	})
}

func (s *service) Get(ctx context.Context, octx OrderContext, orderID string) (*models.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := authorize(octx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	rows, next, err := s.repo.ListByAccount(ctx, accountID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return rows, next, nil
}

// lockOrder loads the order under its row lock and checks the caller may
// touch it.
func (s *service) lockOrder(ctx context.Context, repo Repository, octx OrderContext, orderID string) (*models.Order, error) {
	order, err := repo.Lock(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := authorize(octx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// checkVariants loads every referenced variant and rejects missing or
// inactive ones.
func (s *service) checkVariants(ctx context.Context, tx *gorm.DB, lines []LineInput) (map[uuid.UUID]*models.Variant, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.VariantID]; ok {
			continue
		}
		seen[line.VariantID] = struct{}{}
		ids = append(ids, line.VariantID)
	}

	variants, err := s.catalog.WithTx(tx).GetVariantsByID(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variants")
	}
	for _, id := range ids {
		variant, ok := variants[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found").
				WithDetails(map[string]any{"variant_id": id.String()})
		}
		if !variant.IsActive() || (variant.Product != nil && !variant.Product.IsActive()) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "variant is not orderable").
				WithDetails(map[string]any{"variant_id": id.String()})
		}
	}
	return variants, nil
}

// checkStock locks each variant's open lots and collects every shortfall so
// the caller learns about all short lines at once. Quantities for repeated
// variants are summed before the check.
func (s *service) checkStock(ctx context.Context, tx *gorm.DB, lines []LineInput) error {
	requested := make(map[uuid.UUID]int64, len(lines))
	ordered := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := requested[line.VariantID]; !ok {
			ordered = append(ordered, line.VariantID)
		}
		requested[line.VariantID] += line.Quantity
	}

	var shortages []inventory.Shortage
	for _, variantID := range ordered {
		available, err := s.stock.AvailableForUpdate(ctx, tx, variantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check stock")
		}
		if available < requested[variantID] {
			shortages = append(shortages, inventory.Shortage{
				VariantID: variantID,
				Requested: requested[variantID],
				Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
			WithDetails(map[string]any{"shortages": shortages})
	}
	return nil
}

// fulfill deducts stock for every line, debits the wallet when the order is
// wallet-paid, and moves the order to PAID. Lots are locked before the
// balance row. That ordering only takes effect on postgres; db.ForUpdate is
// a no-op on the sqlite databases the tests run against.
func (s *service) fulfill(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) error {
	for i := range order.LineItems {
		line := &order.LineItems[i]
		if line.VariantID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order line lost its variant").
				WithDetails(map[string]any{"line_id": line.ID.String()})
		}
		trace, err := s.stock.Deduct(ctx, tx, *line.VariantID, line.Quantity)
		if err != nil {
			return err
		}
		line.UsedStock = trace
		if err := repo.SaveLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save line trace")
		}
	}

	if order.PaymentType == enums.PaymentTypeWallet {
		_, err := s.wallet.Debit(ctx, tx, order.AccountID, order.TotalAmount(), order.ID, "order payment")
		if err != nil {
			return err
		}
	}

	order.Status = enums.OrderStatusPaid
	if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, octx OrderContext, order *models.Order) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor: &outbox.ActorRef{
			AccountID:  order.AccountID,
			OperatorID: octx.OperatorID,
			Role:       octx.Role.String(),
		},
		Data: outbox.OrderEventData{
			OrderID:     order.ID,
			AccountID:   order.AccountID,
			Status:      order.Status.String(),
			PaymentType: string(order.PaymentType),
			TotalAmount: order.TotalAmount().String(),
		},
	})
}

func (s *service) logOrder(ctx context.Context, order *models.Order, msg string) {
	if s.logg == nil || order == nil {
		return
	}
	lctx := s.logg.WithOrderID(ctx, order.ID)
	lctx = s.logg.WithAccountID(lctx, order.AccountID.String())
	s.logg.Info(lctx, msg)
}

func authorize(octx OrderContext, order *models.Order) error {
	if octx.Role == enums.AccountRoleHeadquarter {
		return nil
	}
	if order.AccountID != octx.AccountID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
	}
	return nil
}

func invalidState(status enums.OrderStatus, msg string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, msg).
		WithDetails(map[string]any{"status": status.String()})
}

func validateCreateInput(in CreateInput) error {
	if len(in.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	for _, line := range in.Lines {
		if err := validateLine(line); err != nil {
			return err
		}
	}
	if !in.PaymentType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type")
	}
	if in.Source != "" && !in.Source.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order source")
	}
	if in.ShippingFee.Sign() < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping fee cannot be negative")
	}
	return nil
}

func validateLine(in LineInput) error {
	if in.VariantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if in.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if in.UnitPrice.Sign() < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	return nil
}

func buildOrder(octx OrderContext, in CreateInput, variants map[uuid.UUID]*models.Variant, now time.Time) *models.Order {
	source := in.Source
	if source == "" {
		source = enums.OrderSourceERP
	}
	order := &models.Order{
		ID:          models.NewOrderID(now),
		AccountID:   octx.AccountID,
		CreatedByID: octx.OperatorID,
		Status:      enums.OrderStatusPending,
		PaymentType: in.PaymentType,
		Source:      source,
		ShippingFee: in.ShippingFee,
		Remark:      in.Remark,
	}
	for _, line := range in.Lines {
		order.LineItems = append(order.LineItems, *buildLine(order.ID, line, variants[line.VariantID]))
	}
	return order
}

func buildLine(orderID string, in LineInput, variant *models.Variant) *models.OrderLineItem {
	variantID := in.VariantID
	line := &models.OrderLineItem{
		OrderID:   orderID,
		VariantID: &variantID,
		UnitPrice: in.UnitPrice,
		Quantity:  in.Quantity,
		UsedStock: dbtypes.DeductionTrace{},
		Status:    enums.LineItemStatusNormal,
	}
	if variant != nil {
		line.ProductCode = variant.ProductCode
	}
	return line
}

func findLine(lines []models.OrderLineItem, id uuid.UUID) *models.OrderLineItem {
	for i := range lines {
		if lines[i].ID == id {
			return &lines[i]
		}
	}
	return nil
}

func lineInputs(lines []models.OrderLineItem) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		if line.VariantID == nil {
			continue
		}
		out = append(out, LineInput{VariantID: *line.VariantID, Quantity: line.Quantity, UnitPrice: line.UnitPrice})
	}
	return out
}

// walletDebited reports whether the wallet was actually charged for this
// order. HOLDING and PENDING orders never were; wallet orders past that
// point, cancelled ones included, carry a CONSUMPTION entry.
func walletDebited(order *models.Order) bool {
	if order.PaymentType != enums.PaymentTypeWallet {
		return false
	}
	switch order.Status {
	case enums.OrderStatusHolding, enums.OrderStatusPending:
		return false
	}
	return true
}
