// Package http holds what the gateway router needs from the composition root:
// the feature modules, the shared route groups they mount on and the
// readiness probe.
package http

import (
	"context"

	"fullhouse_client/platform/config"
	"fullhouse_client/platform/httpkit"
	"fullhouse_client/platform/logger"
	"fullhouse_client/platform/metrics"

	"github.com/gin-gonic/gin"
)

// Module is a feature area (chat, leads, analytics) that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is handed to every module during route registration.
type RouterContext struct {
	Engine *gin.Engine
	// V1 forwards a bearer token when the caller sends one.
	V1 *gin.RouterGroup
	// Protected rejects requests without a bearer token.
	Protected *gin.RouterGroup
	// ChatRateLimiter throttles message posts per client IP.
	ChatRateLimiter *httpkit.IPRateLimiter
}

// HealthChecker backs /api/health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is what main hands to the router.
type App struct {
	Config config.HTTPConfig
	Logger *logger.Logger
	// Health may be nil, in which case the gateway always reports ok.
	Health HealthChecker
	// Metrics, when set, instruments every route and serves /metrics.
	Metrics *metrics.Metrics
	Modules []Module
}
