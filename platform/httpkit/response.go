// Package httpkit holds the gateway's gin middleware and response helpers.
package httpkit

import (
	"errors"
	"net/http"

	"fullhouse_client/platform/apperr"
	"fullhouse_client/platform/logger"

	"github.com/gin-gonic/gin"
)

const msgInternal = "internal error"

// ErrorResponse is the body of every non-2xx reply. RequestID matches the
// X-Request-ID header so a user report can be traced to the gateway logs.
type ErrorResponse struct {
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

func Error(c *gin.Context, status int, message string, details any) {
	requestID, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
	c.JSON(status, ErrorResponse{Error: message, Details: details, RequestID: requestID})
}

// HandleError writes err and reports whether there was one. An *apperr.Error
// anywhere in the chain picks the status and user message; anything else is
// a 500 whose text stays in the gin error list.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var e *apperr.Error
	if !errors.As(err, &e) {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, msgInternal, nil)
		return true
	}
	Error(c, e.HTTPStatus(), e.Message, e.Details)
	return true
}
