package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/auth"
	"github.com/orgstack/org-license-manager/internal/constants"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/services"
)

// RequireAuth verifies the bearer token and stores the claims in the request
// context.
func RequireAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			Fail(c, apperrors.Unauthorized("Not authenticated", "A bearer token is required"))
			return
		}

		claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			Fail(c, err)
			return
		}

		c.Set(constants.ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireAdmin gates a route on the identity provider's Admin role claim.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			Fail(c, apperrors.Unauthorized("Not authenticated", "A bearer token is required"))
			return
		}
		if !strings.EqualFold(claims.Role, constants.ClaimRoleAdmin) {
			Fail(c, apperrors.Forbidden("Admin required", "This endpoint requires the Admin role"))
			return
		}
		c.Next()
	}
}

// GetClaims retrieves the verified claims from the request context.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(constants.ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// CurrentUser resolves the internal user record for the verified identity,
// creating it on first sight. The result is memoized in the request context
// so one request never resolves twice.
func CurrentUser(c *gin.Context, users *services.UserService) (*models.User, error) {
	if cached, exists := c.Get(constants.ContextKeyCurrentUser); exists {
		if user, ok := cached.(*models.User); ok {
			return user, nil
		}
	}

	claims, ok := GetClaims(c)
	if !ok {
		return nil, apperrors.Unauthorized("Not authenticated", "A bearer token is required")
	}

	user, err := users.GetOrCreate(claims.ExternalID, claims.Email, claims.Role)
	if err != nil {
		return nil, err
	}

	c.Set(constants.ContextKeyCurrentUser, user)
	return user, nil
}
