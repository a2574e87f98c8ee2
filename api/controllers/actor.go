package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/simovate/simstack-backend/api/middleware"
	"github.com/simovate/simstack-backend/internal/orders"
	"github.com/simovate/simstack-backend/pkg/enums"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
)

// requestActor rebuilds the acting account from the auth context.
func requestActor(r *http.Request) (orders.OrderContext, error) {
	raw := middleware.AccountIDFromContext(r.Context())
	if raw == "" {
		return orders.OrderContext{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "account context missing")
	}
	accountID, err := uuid.Parse(raw)
	if err != nil {
		return orders.OrderContext{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid account id")
	}

	role := enums.AccountRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return orders.OrderContext{}, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	return orders.OrderContext{
		AccountID:  accountID,
		OperatorID: accountID,
		Role:       role,
	}, nil
}

func isHeadquarter(octx orders.OrderContext) bool {
	return octx.Role == enums.AccountRoleHeadquarter
}
