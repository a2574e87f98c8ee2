package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/simovate/simstack-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	Role      enums.AccountRole
	ParentID  *uuid.UUID
	JTI       string
}

// AccessTokenClaims is the typed JWT issued to clients. ParentID carries the
// distributor's owning agent so pricing never needs an extra account read.
type AccessTokenClaims struct {
	AccountID uuid.UUID         `json:"account_id"`
	Role      enums.AccountRole `json:"role"`
	ParentID  *uuid.UUID        `json:"parent_id,omitempty"`
	jwt.RegisteredClaims
}
