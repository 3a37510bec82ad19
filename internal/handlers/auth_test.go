package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orgstack/org-license-manager/internal/dto"
)

func TestAuthHandler_Login(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "Alice@Example.com",
		"role":  "admin",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.LoginResponseDTO
	decodeJSON(t, w, &response)
	require.NotEmpty(t, response.Token)
	require.Equal(t, "alice@example.com", response.Email)
	require.Equal(t, "Admin", response.Role)

	claims, err := env.tokens.Validate(response.Token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "Admin", claims.Role)
}

func TestAuthHandler_LoginDefaultsRoleToUser(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "bob@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.LoginResponseDTO
	decodeJSON(t, w, &response)
	require.Equal(t, "User", response.Role)
}

func TestAuthHandler_LoginValidation(t *testing.T) {
	env := setupHandlerTestEnv(t)

	// Missing or malformed email.
	w := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown role claim.
	w = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com",
		"role":  "superadmin",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Claims(t *testing.T) {
	env := setupHandlerTestEnv(t)
	_, token := env.loginAs(t, "alice@example.com", "User")

	w := env.request(t, http.MethodGet, "/api/auth/claims", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var claims dto.ClaimsDTO
	decodeJSON(t, w, &claims)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "User", claims.Role)
}

func TestAuthHandler_ClaimsRequiresToken(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/auth/claims", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/auth/claims", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
