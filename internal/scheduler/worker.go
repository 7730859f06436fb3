package scheduler

import (
	"context"
	"fmt"

	"fullhouse_client/platform/config"
	"fullhouse_client/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	syncer *Syncer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, api PreferenceAPI, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(api, log)
	w.server = server
	return w, nil
}

func newWorker(api PreferenceAPI, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.NewNop()
	}
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:    mux,
		syncer: NewSyncer(api, log),
		log:    log,
	}
	mux.HandleFunc(TaskChatPreferencesSync, w.handleChatPreferencesSync)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleChatPreferencesSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseChatPreferencesSyncPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
	}
	_, err = w.syncer.Sync(ctx, payload)
	return err
}
