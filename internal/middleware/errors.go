package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/orgstack/org-license-manager/internal/apperrors"
)

// ErrorResponse is the structured error body returned for every failed
// request.
type ErrorResponse struct {
	Status   int    `json:"status"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

// ErrorHandler translates errors attached to the context into structured
// responses. Expected client errors log at warning with the request path;
// anything else logs at error and returns a generic body so internals never
// leak.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if appErr, ok := apperrors.As(err); ok {
			logrus.WithFields(logrus.Fields{
				"status": appErr.StatusCode(),
				"path":   c.Request.URL.Path,
			}).Warnf("Client error: %s", appErr.Error())

			c.JSON(appErr.StatusCode(), ErrorResponse{
				Status:   appErr.StatusCode(),
				Title:    appErr.Title,
				Detail:   appErr.Detail,
				Instance: c.Request.URL.Path,
			})
			return
		}

		logrus.WithField("path", c.Request.URL.Path).WithError(err).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:   http.StatusInternalServerError,
			Title:    "An error occurred while processing your request",
			Detail:   "An unexpected error occurred. Please try again later.",
			Instance: c.Request.URL.Path,
		})
	}
}

// Fail records an error on the context for the ErrorHandler to translate.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
