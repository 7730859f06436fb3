package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "fullhouse_client/internal/http"
	"fullhouse_client/platform/httpkit"
	"fullhouse_client/platform/logger"
	"fullhouse_client/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpConfig struct {
	origins []string
}

func (c httpConfig) GetHTTPAddr() string      { return ":0" }
func (c httpConfig) GetCORSAllowAll() bool    { return false }
func (c httpConfig) GetCORSOrigins() []string { return c.origins }
func (c httpConfig) GetCORSAllowCreds() bool  { return true }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/echo", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": httpkit.TokenFrom(c)})
	})
	ctx.Protected.GET("/private", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func newEngine(health apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:  httpConfig{origins: []string{"http://localhost:5173"}},
		Logger:  logger.NewNop(),
		Health:  health,
		Modules: []apphttp.Module{echoModule{}},
	})
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newEngine(nil), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := pingFunc(func(context.Context) error { return errors.New("redis down") })
	rec = serve(newEngine(down), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	engine := newEngine(nil)

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.NotEmpty(t, rec.Header().Get(httpkit.HeaderRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(httpkit.HeaderRequestID, "req-42")
	rec = serve(engine, req)
	assert.Equal(t, "req-42", rec.Header().Get(httpkit.HeaderRequestID))
}

func TestBearerPassthroughAndProtectedGroup(t *testing.T) {
	engine := newEngine(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/echo", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := serve(engine, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"abc"}`, rec.Body.String())

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/private", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/private", nil)
	req.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, http.StatusNoContent, serve(engine, req).Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	engine := newEngine(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/echo", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := serve(engine, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := New(&apphttp.App{
		Config:  httpConfig{},
		Logger:  logger.NewNop(),
		Metrics: metrics.New(),
		Modules: []apphttp.Module{echoModule{}},
	})

	serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/echo", nil))
	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/echo"`)
}
