package httpkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fullhouse_client/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		if !HandleError(c, err) {
			c.Status(http.StatusNoContent)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-7")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var body ErrorResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHandleErrorNil(t *testing.T) {
	rec, _ := serveError(t, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleErrorWrappedTypedError(t *testing.T) {
	err := fmt.Errorf("load lead: %w", apperr.FromStatus(http.StatusNotFound, "Lead no encontrado"))

	rec, body := serveError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Lead no encontrado", body.Error)
	assert.Equal(t, "req-7", body.RequestID)
}

func TestHandleErrorHidesUntypedText(t *testing.T) {
	rec, body := serveError(t, errors.New("dial tcp 10.0.0.3:8000: refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgInternal, body.Error)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
	assert.Equal(t, "req-7", body.RequestID)
}

func TestRequireTokenRejectsWithRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), BearerToken(), RequireToken())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-8")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-8", body.RequestID)
}
