package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/simovate/simstack-backend/api/responses"
	"github.com/simovate/simstack-backend/api/validators"
	"github.com/simovate/simstack-backend/internal/wallet"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
	"github.com/simovate/simstack-backend/pkg/logger"
	"github.com/simovate/simstack-backend/pkg/pagination"
)

// WalletBalance returns the caller's current balance. Headquarter may read
// any account via the account_id query parameter.
func WalletBalance(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		accountID, err := walletTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"account_id": accountID,
			"balance":    balance,
		})
	}
}

// WalletEntries pages the ledger newest first.
func WalletEntries(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		accountID, err := walletTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
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

		entries, next, err := svc.Entries(r.Context(), accountID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]ledgerEntryView, 0, len(entries))
		for _, entry := range entries {
			views = append(views, toLedgerEntryView(entry))
		}
		responses.WriteSuccess(w, map[string]any{
			"entries":     views,
			"next_cursor": next,
		})
	}
}

type walletDepositRequest struct {
	AccountID string  `json:"account_id" validate:"required"`
	Amount    string  `json:"amount" validate:"required"`
	Remark    *string `json:"remark"`
}

// WalletDeposit tops up any account's wallet. Headquarter only.
func WalletDeposit(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		var payload walletDepositRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountID, err := uuid.Parse(strings.TrimSpace(payload.AccountID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account_id"))
			return
		}

		amount, err := parseDecimal(payload.Amount, "amount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		remark := ""
		if payload.Remark != nil {
			remark = strings.TrimSpace(*payload.Remark)
		}

		entry, err := svc.Deposit(r.Context(), accountID, amount, remark)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"entry": toLedgerEntryView(*entry)})
	}
}

// walletTarget resolves which wallet the request addresses: the caller's own,
// or any account when headquarter passes account_id.
func walletTarget(r *http.Request) (uuid.UUID, error) {
	octx, err := requestActor(r)
	if err != nil {
		return uuid.Nil, err
	}

	raw := strings.TrimSpace(r.URL.Query().Get("account_id"))
	if raw == "" {
		return octx.AccountID, nil
	}
	if !isHeadquarter(octx) {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot read another account's wallet")
	}
	accountID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account_id")
	}
	return accountID, nil
}
