package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/auth"
	"github.com/orgstack/org-license-manager/internal/constants"
	"github.com/orgstack/org-license-manager/internal/dto"
	"github.com/orgstack/org-license-manager/internal/middleware"
	"github.com/orgstack/org-license-manager/internal/services"
)

// AuthHandler stands in for an external identity provider: it mints tokens
// for whoever asks. Replace the login route with a real IdP integration
// before exposing this outside development.
type AuthHandler struct {
	tokens *auth.TokenService
	users  *services.UserService
}

func NewAuthHandler(tokens *auth.TokenService, users *services.UserService) *AuthHandler {
	return &AuthHandler{tokens: tokens, users: users}
}

// Login issues a signed token for the given identity.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		UserID string `json:"userId"`
		Email  string `json:"email" binding:"required,email"`
		Role   string `json:"role"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperrors.BadRequest("Invalid request", "A valid email address is required"))
		return
	}

	role, ok := normalizeClaimRole(req.Role)
	if !ok {
		middleware.Fail(c, apperrors.BadRequest("Invalid role", "Role must be User or Admin"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	externalID := strings.TrimSpace(req.UserID)
	if externalID == "" {
		externalID = email
	}

	user, err := h.users.GetOrCreate(externalID, email, role)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(externalID, email, role)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponseDTO{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
	})
}

// Claims echoes the verified token claims back to the caller.
func (h *AuthHandler) Claims(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.Fail(c, apperrors.Unauthorized("Not authenticated", "A bearer token is required"))
		return
	}
	c.JSON(http.StatusOK, dto.ToClaimsDTO(claims))
}

func normalizeClaimRole(raw string) (string, bool) {
	switch {
	case raw == "" || strings.EqualFold(raw, constants.ClaimRoleUser):
		return constants.ClaimRoleUser, true
	case strings.EqualFold(raw, constants.ClaimRoleAdmin):
		return constants.ClaimRoleAdmin, true
	default:
		return "", false
	}
}
