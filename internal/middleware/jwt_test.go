package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateTokenRoundTrip(t *testing.T) {
	signed := signToken(t, &Claims{
		Name: "Alex",
		Role: RoleAuthor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	claims, err := ValidateToken(signed, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "Alex", claims.Name)
	assert.Equal(t, RoleAuthor, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	signed := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
	}, "other-secret")

	_, err := ValidateToken(signed, testSecret)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	signed := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}, testSecret)

	_, err := ValidateToken(signed, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateTokenMissingSubject(t *testing.T) {
	signed := signToken(t, &Claims{Name: "No Subject"}, testSecret)

	_, err := ValidateToken(signed, testSecret)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", testSecret)
	assert.Error(t, err)
}
