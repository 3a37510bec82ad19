package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/middleware"
)

// parseUUIDParam reads a path parameter as a UUID, failing the request with a
// 400 when it does not parse.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		middleware.Fail(c, apperrors.BadRequest("Invalid identifier", "Path parameter '"+name+"' must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}
