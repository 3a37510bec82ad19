package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/orgstack/org-license-manager/internal/apperrors"
)

func TestTokenService_RoundTrip(t *testing.T) {
	tokens := NewTokenService("test-secret", "test-issuer", 60)

	signed, expiresAt, err := tokens.Issue("user-1", "alice@example.com", "Admin")
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.True(t, expiresAt.After(time.Now()))

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.ExternalID)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "Admin", claims.Role)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	tokens := NewTokenService("test-secret", "test-issuer", 60)
	other := NewTokenService("other-secret", "test-issuer", 60)

	signed, _, err := other.Issue("user-1", "alice@example.com", "User")
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestTokenService_RejectsWrongIssuer(t *testing.T) {
	tokens := NewTokenService("test-secret", "test-issuer", 60)
	other := NewTokenService("test-secret", "other-issuer", 60)

	signed, _, err := other.Issue("user-1", "alice@example.com", "User")
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	require.Error(t, err)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	tokens := NewTokenService("test-secret", "test-issuer", 60)

	now := time.Now().Add(-2 * time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"iss": "test-issuer",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestTokenService_RejectsUnsignedToken(t *testing.T) {
	tokens := NewTokenService("test-secret", "test-issuer", 60)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1",
		"iss": "test-issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	require.Error(t, err)
}

func TestTokenService_DefaultsRoleToUser(t *testing.T) {
	tokens := NewTokenService("test-secret", "test-issuer", 60)

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "alice@example.com",
		"iss":   "test-issuer",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, "User", claims.Role)
}
