package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/deliverly/deliverly-backend/pkg/enums"
)

// AccessTokenClaims is the caller identity this service consumes. Tokens are
// minted elsewhere; the fulfillment core only verifies and reads them.
type AccessTokenClaims struct {
	UserID    uuid.UUID  `json:"user_id"`
	Role      enums.Role `json:"role"`
	PartnerID *uuid.UUID `json:"partner_id,omitempty"`
	jwt.RegisteredClaims
}
