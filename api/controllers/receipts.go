package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/simovate/simstack-backend/api/responses"
	"github.com/simovate/simstack-backend/api/validators"
	"github.com/simovate/simstack-backend/internal/receipts"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/logger"
	"github.com/simovate/simstack-backend/pkg/pagination"
)

// ReceiptList pages issued receipts newest first. Headquarter only.
func ReceiptList(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receipts service unavailable"))
			return
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

		list, next, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]receiptView, 0, len(list))
		for i := range list {
			views = append(views, toReceiptView(&list[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"receipts":    views,
			"next_cursor": next,
		})
	}
}

// ReceiptDetail returns one receipt with its printed lines.
func ReceiptDetail(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receipts service unavailable"))
			return
		}

		receiptID, err := parseUUIDParam(r, "receiptId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Get(r.Context(), receiptID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"receipt": toReceiptView(receipt)})
	}
}

type manualReceiptItemRequest struct {
	ProductName string  `json:"product_name" validate:"required,min=1,max=128"`
	ProductCode *string `json:"product_code"`
	Quantity    int64   `json:"quantity" validate:"required,gt=0"`
	UnitPrice   string  `json:"unit_price" validate:"required"`
}

type manualReceiptRequest struct {
	ReceiptTo  string                     `json:"receipt_to" validate:"required,min=1,max=255"`
	TaxID      *string                    `json:"tax_id"`
	IssuedDate *string                    `json:"issued_date"`
	Items      []manualReceiptItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReceiptCreateManual issues a receipt with no backing order. Headquarter only.
func ReceiptCreateManual(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receipts service unavailable"))
			return
		}

		var payload manualReceiptRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		issued := time.Now().UTC()
		if payload.IssuedDate != nil && strings.TrimSpace(*payload.IssuedDate) != "" {
			parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*payload.IssuedDate))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid issued_date"))
				return
			}
			issued = parsed
		}

		input := receipts.ManualInput{
			ReceiptTo:  validators.SanitizeString(payload.ReceiptTo, 255),
			TaxID:      payload.TaxID,
			IssuedDate: issued,
		}
		for _, item := range payload.Items {
			unitPrice, err := parseDecimal(item.UnitPrice, "unit_price")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Items = append(input.Items, receipts.ManualItemInput{
				ProductName: validators.SanitizeString(item.ProductName, 128),
				ProductCode: item.ProductCode,
				Quantity:    item.Quantity,
				UnitPrice:   unitPrice,
			})
		}

		receipt, err := svc.CreateManual(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"receipt": toReceiptView(receipt)})
	}
}
