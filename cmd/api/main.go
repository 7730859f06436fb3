package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fullhouse_client/internal/analytics"
	"fullhouse_client/internal/api/client"
	"fullhouse_client/internal/chat"
	chathandler "fullhouse_client/internal/chat/handler"
	apphttp "fullhouse_client/internal/http"
	"fullhouse_client/internal/http/router"
	"fullhouse_client/internal/leads"
	"fullhouse_client/internal/scheduler"
	"fullhouse_client/platform/config"
	"fullhouse_client/platform/events"
	"fullhouse_client/platform/logger"
	"fullhouse_client/platform/metrics"
	"fullhouse_client/platform/phone"
	"fullhouse_client/platform/validator"

	"github.com/redis/go-redis/v9"
)

const sessionSweepInterval = time.Minute

// redisHealth adapts a redis client to the router's readiness check.
type redisHealth struct {
	rdb *redis.Client
}

func (h redisHealth) Ping(ctx context.Context) error {
	return h.rdb.Ping(ctx).Err()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting chat gateway", "env", cfg.Env, "addr", cfg.HTTPAddr, "api", cfg.APIBaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	rdb, closeRedis := initRedis(ctx, cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	eventBus := events.NewInMemoryBus(log)
	apiClient := client.NewClient(cfg, log)
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	factory, err := chat.NewFactory(apiClient, cfg, eventBus, log)
	if err != nil {
		log.Error("failed to load conversation script", "error", err, "path", cfg.ChatScriptPath)
		panic("failed to load conversation script: " + err.Error())
	}

	sessions := chathandler.NewSessionStore(factory, chathandler.DefaultSessionTTL, chathandler.DefaultMaxSessions, log)
	go sessions.Run(ctx, sessionSweepInterval)
	chatModule := chathandler.NewModule(chathandler.New(sessions, apiClient, val, log), sessions)

	leadsModule := leads.NewModule(apiClient, val, phone.NewNormalizer(cfg.PhoneDefaultRegion), log)

	funnel := analytics.NewFunnel(initFunnelRepo(rdb), factory.Script())
	funnel.Subscribe(eventBus)
	analyticsModule := analytics.NewModule(analytics.NewService(apiClient, log), funnel)

	enqueuer, closeEnqueuer := initPreferenceSync(cfg, apiClient, log)
	if closeEnqueuer != nil {
		defer closeEnqueuer()
	}
	scheduler.SubscribePreferenceSync(eventBus, enqueuer, log)

	gatewayMetrics := metrics.New()
	gatewayMetrics.CountEvents(eventBus,
		chat.EventStepAdvanced,
		chat.EventConversationCompleted,
		chat.EventTurnFailed,
		chat.EventPropertyPrefilled,
	)
	gatewayMetrics.Gauge("chat_sessions_active", "Open chat sessions", func() float64 {
		return float64(sessions.Len())
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Metrics: gatewayMetrics,
		Modules: []apphttp.Module{
			chatModule,
			leadsModule,
			analyticsModule,
		},
	}
	if rdb != nil {
		app.Health = redisHealth{rdb: rdb}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err, ok := <-srvErr:
		if ok && err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRedis connects when REDIS_URL is set. Without it the gateway keeps
// funnel counts in memory and delivers preferences inline.
func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) (*redis.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; funnel counts kept in memory")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		panic("invalid REDIS_URL: " + err.Error())
	}
	rdb := redis.NewClient(opts)

	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis connection established")

	return rdb, func() { _ = rdb.Close() }
}

func initFunnelRepo(rdb *redis.Client) analytics.FunnelRepository {
	if rdb == nil {
		return analytics.NewMemoryFunnelRepo()
	}
	return analytics.NewRedisFunnelRepo(rdb, "")
}

func initPreferenceSync(cfg config.SchedulerConfig, api scheduler.PreferenceAPI, log *logger.Logger) (scheduler.PreferenceEnqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; chat preferences delivered inline")
		return scheduler.NewSyncer(api, log), nil
	}

	syncClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize preference sync client; delivering inline", "error", err)
		return scheduler.NewSyncer(api, log), nil
	}

	return syncClient, func() {
		_ = syncClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
