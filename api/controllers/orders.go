package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simovate/simstack-backend/api/responses"
	"github.com/simovate/simstack-backend/api/validators"
	internalorders "github.com/simovate/simstack-backend/internal/orders"
	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/logger"
	"github.com/simovate/simstack-backend/pkg/pagination"
)

type orderLineRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice string `json:"unit_price" validate:"required"`
}

func (req orderLineRequest) toInput() (internalorders.LineInput, error) {
	variantID, err := uuid.Parse(strings.TrimSpace(req.VariantID))
	if err != nil {
		return internalorders.LineInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant_id")
	}
	unitPrice, err := parseDecimal(req.UnitPrice, "unit_price")
	if err != nil {
		return internalorders.LineInput{}, err
	}
	return internalorders.LineInput{
		VariantID: variantID,
		Quantity:  req.Quantity,
		UnitPrice: unitPrice,
	}, nil
}

type orderCreateRequest struct {
	Lines       []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
	PaymentType string             `json:"payment_type" validate:"required"`
	Source      string             `json:"source"`
	ShippingFee string             `json:"shipping_fee"`
	Remark      *string            `json:"remark"`
}

func (req orderCreateRequest) toInput() (internalorders.CreateInput, error) {
	in := internalorders.CreateInput{Remark: req.Remark}

	paymentType, err := enums.ParsePaymentType(strings.TrimSpace(req.PaymentType))
	if err != nil {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment_type")
	}
	in.PaymentType = paymentType

	in.Source = enums.OrderSourceERP
	if raw := strings.TrimSpace(req.Source); raw != "" {
		source, err := enums.ParseOrderSource(raw)
		if err != nil {
			return in, pkgerrors.New(pkgerrors.CodeValidation, "invalid source")
		}
		in.Source = source
	}

	if raw := strings.TrimSpace(req.ShippingFee); raw != "" {
		fee, err := parseDecimal(raw, "shipping_fee")
		if err != nil {
			return in, err
		}
		if fee.IsNegative() {
			return in, pkgerrors.New(pkgerrors.CodeValidation, "shipping_fee must not be negative")
		}
		in.ShippingFee = fee
	}

	for _, line := range req.Lines {
		input, err := line.toInput()
		if err != nil {
			return in, err
		}
		in.Lines = append(in.Lines, input)
	}
	return in, nil
}

// OrderCreate places and immediately fulfills an order.
func OrderCreate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return createOrder(svc, logg, false)
}

// ReservationCreate places a HOLDING order that reserves nothing until confirmed.
func ReservationCreate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return createOrder(svc, logg, true)
}

func createOrder(svc internalorders.Service, logg *logger.Logger, reservation bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		octx, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var order *models.Order
		if reservation {
			order, err = svc.CreateReservation(r.Context(), octx, input)
		} else {
			order, err = svc.Create(r.Context(), octx, input)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"order": toOrderView(order)})
	}
}

// ReservationConfirm fulfills a HOLDING order: stock is deducted and the
// wallet debited atomically.
func ReservationConfirm(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		octx, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmReservation(r.Context(), octx, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"order": toOrderView(order)})
	}
}

type reservationLineUpdateRequest struct {
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice string `json:"unit_price" validate:"required"`
}

// ReservationLineUpdate edits quantity and price on an unconfirmed line.
func ReservationLineUpdate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		octx, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := parseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reservationLineUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unitPrice, err := parseDecimal(payload.UnitPrice, "unit_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.UpdateReservationLine(r.Context(), octx, orderID, lineID, payload.Quantity, unitPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"line": toLineItemView(*line)})
	}
}

// ReservationLineAdd appends a line to an unconfirmed order.
func ReservationLineAdd(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		octx, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.AddReservationLine(r.Context(), octx, orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"line": toLineItemView(*line)})
	}
}

// OrderLineDelete removes one line, restoring its stock and wallet effects.
// Deleting the last line removes the whole order.
func OrderLineDelete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		octx, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := parseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteLine(r.Context(), octx, orderID, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OrderDelete reverses the whole order: every lot receives its units back and
// wallet consumption is compensated.
func OrderDelete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		octx, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), octx, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OrderList pages the caller's orders newest first. Headquarter may inspect
// any account via the account_id query parameter.
func OrderList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		octx, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountID := octx.AccountID
		if raw := strings.TrimSpace(r.URL.Query().Get("account_id")); raw != "" {
			if !isHeadquarter(octx) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cannot list another account's orders"))
				return
			}
			accountID, err = uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account_id"))
				return
			}
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, next, err := svc.List(r.Context(), accountID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"orders":      toOrderViews(list),
			"next_cursor": next,
		})
	}
}

// OrderDetail returns the full order with line items.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		octx, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), octx, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"order": toOrderView(order)})
	}
}

func orderIDParam(r *http.Request) (string, error) {
	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return orderID, nil
}
