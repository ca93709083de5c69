package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverly/deliverly-backend/pkg/config"
	"github.com/deliverly/deliverly-backend/pkg/enums"
)

func mintToken(t *testing.T, cfg config.JWTConfig, claims AccessTokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	require.NoError(t, err)
	return signed
}

func TestParseAccessTokenRoundTrip(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "deliverly"}
	partnerID := uuid.New()
	signed := mintToken(t, cfg, AccessTokenClaims{
		UserID:    uuid.New(),
		Role:      enums.RolePartner,
		PartnerID: &partnerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "deliverly",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ParseAccessToken(cfg, signed)
	require.NoError(t, err)
	assert.Equal(t, enums.RolePartner, claims.Role)
	require.NotNil(t, claims.PartnerID)
	assert.Equal(t, partnerID, *claims.PartnerID)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "deliverly"}
	signed := mintToken(t, cfg, AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "deliverly",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := ParseAccessToken(cfg, signed)
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "deliverly"}
	signed := mintToken(t, cfg, AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.RoleDriver,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := ParseAccessToken(cfg, signed)
	assert.Error(t, err)
}
