package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/auth"
	"github.com/lankaline/freight-api/internal/config"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests"

func newValidator() *auth.JWTValidator {
	return auth.NewJWTValidator(&config.AuthConfig{
		JwtSecret: testSecret,
		Issuer:    "lankaline-identity",
		Audience:  "freight-api",
	})
}

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(userID uuid.UUID) *auth.Claims {
	return &auth.Claims{
		DisplayName: "Nimal Perera",
		Email:       "nimal@lankaline.lk",
		Role:        string(domain.RoleSales),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "lankaline-identity",
			Audience:  jwt.ClaimStrings{"freight-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestJWTValidator_ValidToken(t *testing.T) {
	v := newValidator()
	userID := uuid.New()

	userCtx, err := v.ValidateToken(signToken(t, testSecret, jwt.SigningMethodHS256, validClaims(userID)))
	require.NoError(t, err)
	assert.Equal(t, userID, userCtx.UserID)
	assert.Equal(t, "Nimal Perera", userCtx.DisplayName)
	assert.Equal(t, domain.RoleSales, userCtx.Role)
	assert.Nil(t, userCtx.SbuID)
}

func TestJWTValidator_SbuClaim(t *testing.T) {
	v := newValidator()
	sbuID := uuid.New()

	claims := validClaims(uuid.New())
	claims.SbuID = sbuID.String()

	userCtx, err := v.ValidateToken(signToken(t, testSecret, jwt.SigningMethodHS256, claims))
	require.NoError(t, err)
	require.NotNil(t, userCtx.SbuID)
	assert.Equal(t, sbuID, *userCtx.SbuID)
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	v := newValidator()

	claims := validClaims(uuid.New())
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := v.ValidateToken(signToken(t, testSecret, jwt.SigningMethodHS256, claims))
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestJWTValidator_WrongSecret(t *testing.T) {
	v := newValidator()

	_, err := v.ValidateToken(signToken(t, "some-other-secret", jwt.SigningMethodHS256, validClaims(uuid.New())))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_WrongSigningMethod(t *testing.T) {
	v := newValidator()

	_, err := v.ValidateToken(signToken(t, testSecret, jwt.SigningMethodHS384, validClaims(uuid.New())))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_WrongIssuer(t *testing.T) {
	v := newValidator()

	claims := validClaims(uuid.New())
	claims.Issuer = "someone-else"

	_, err := v.ValidateToken(signToken(t, testSecret, jwt.SigningMethodHS256, claims))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_UnknownRole(t *testing.T) {
	v := newValidator()

	claims := validClaims(uuid.New())
	claims.Role = "WAREHOUSE"

	_, err := v.ValidateToken(signToken(t, testSecret, jwt.SigningMethodHS256, claims))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_MissingSubject(t *testing.T) {
	v := newValidator()

	claims := validClaims(uuid.New())
	claims.Subject = ""

	_, err := v.ValidateToken(signToken(t, testSecret, jwt.SigningMethodHS256, claims))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
