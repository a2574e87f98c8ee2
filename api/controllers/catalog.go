package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simovate/simstack-backend/api/responses"
	"github.com/simovate/simstack-backend/api/validators"
	"github.com/simovate/simstack-backend/internal/accounts"
	"github.com/simovate/simstack-backend/internal/catalog"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/logger"
)

// CatalogList returns active variants priced for the requesting account.
func CatalogList(svc catalog.Service, accountsSvc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || accountsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		octx, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requester, err := accountsSvc.GetActive(r.Context(), octx.AccountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variants, err := svc.ListVariants(r.Context(), requester)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]variantView, 0, len(variants))
		for _, pv := range variants {
			views = append(views, toVariantView(pv))
		}
		responses.WriteSuccess(w, map[string]any{"variants": views})
	}
}

// CatalogDetail returns a single variant priced for the requesting account.
func CatalogDetail(svc catalog.Service, accountsSvc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || accountsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		octx, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variantID, err := parseUUIDParam(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requester, err := accountsSvc.GetActive(r.Context(), octx.AccountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pv, err := svc.GetVariant(r.Context(), variantID, requester)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"variant": toVariantView(*pv)})
	}
}

type lotCreateRequest struct {
	VariantID string  `json:"variant_id" validate:"required"`
	Name      string  `json:"name" validate:"required,min=1,max=128"`
	Code      *string `json:"code"`
	Quantity  int64   `json:"quantity" validate:"required,gt=0"`
}

// LotCreate registers an intake batch. Headquarter only.
func LotCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload lotCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variantID, err := uuid.Parse(strings.TrimSpace(payload.VariantID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant_id"))
			return
		}

		lot, err := svc.RegisterLot(r.Context(), catalog.LotInput{
			VariantID: variantID,
			Name:      validators.SanitizeString(payload.Name, 128),
			Code:      payload.Code,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"lot": toLotView(*lot)})
	}
}

// LotList returns a variant's lots newest intake last. Headquarter only.
func LotList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		variantID, err := parseUUIDParam(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lots, err := svc.ListLots(r.Context(), variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]lotView, 0, len(lots))
		for _, lot := range lots {
			views = append(views, toLotView(lot))
		}
		responses.WriteSuccess(w, map[string]any{"lots": views})
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func parseDecimal(raw string, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return value, nil
}
