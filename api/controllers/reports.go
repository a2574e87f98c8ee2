package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simovate/simstack-backend/api/responses"
	"github.com/simovate/simstack-backend/internal/reports"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/logger"
)

// ReportDaily returns one day's sales rollup for the caller's account.
// Headquarter may read any account via the account_id query parameter.
func ReportDaily(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		accountID, err := reportTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := parseDateQuery(r, "date", reports.DateOf(time.Now()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Get(r.Context(), accountID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"report": toReportView(report)})
	}
}

// ReportRange returns the rollups between from and to inclusive.
func ReportRange(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		accountID, err := reportTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		to, err := parseDateQuery(r, "to", reports.DateOf(time.Now()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := parseDateQuery(r, "from", to.AddDate(0, 0, -30))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if from.After(to) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to"))
			return
		}

		list, err := svc.ListForAccount(r.Context(), accountID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]reportView, 0, len(list))
		for i := range list {
			views = append(views, toReportView(&list[i]))
		}
		responses.WriteSuccess(w, map[string]any{"reports": views})
	}
}

func reportTarget(r *http.Request) (uuid.UUID, error) {
	octx, err := requestActor(r)
	if err != nil {
		return uuid.Nil, err
	}

	raw := strings.TrimSpace(r.URL.Query().Get("account_id"))
	if raw == "" {
		return octx.AccountID, nil
	}
	if !isHeadquarter(octx) {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot read another account's reports")
	}
	accountID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account_id")
	}
	return accountID, nil
}

func parseDateQuery(r *http.Request, key string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return parsed, nil
}
