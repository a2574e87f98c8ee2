package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simovate/simstack-backend/pkg/enums"
)

// OrderContext says who an operation bills and who performed it. Headquarter
// staff place orders on behalf of customer accounts, so the two ids can
// differ. It is passed explicitly into every engine call, never carried in
// ambient request state.
type OrderContext struct {
	AccountID  uuid.UUID
	OperatorID uuid.UUID
	Role       enums.AccountRole
}

// LineInput is one cart row handed to the engine. The unit price arrives
// already resolved for the buyer; the engine snapshots it onto the line
// as-is and never re-resolves it.
type LineInput struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateInput carries the order-level fields shared by Create and
// CreateReservation.
type CreateInput struct {
	Lines       []LineInput
	PaymentType enums.PaymentType
	Source      enums.OrderSource
	ShippingFee decimal.Decimal
	Remark      *string
}
