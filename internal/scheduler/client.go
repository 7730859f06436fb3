package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"fullhouse_client/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	syncMaxRetry = 5
	syncTimeout  = 30 * time.Second
)

type Client struct {
	client *asynq.Client
	queue  string
}

// PreferenceEnqueuer schedules a completed conversation for delivery.
type PreferenceEnqueuer interface {
	EnqueuePreferenceSync(ctx context.Context, payload ChatPreferencesSyncPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueuePreferenceSync is keyed by session id, so a session is delivered at most once
// while its task is retained.
func (c *Client) EnqueuePreferenceSync(ctx context.Context, payload ChatPreferencesSyncPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewChatPreferencesSyncTask(payload)
	if err != nil {
		return err
	}

	opts := []asynq.Option{
		asynq.Queue(c.queue),
		asynq.MaxRetry(syncMaxRetry),
		asynq.Timeout(syncTimeout),
	}
	if payload.SessionID != "" {
		opts = append(opts, asynq.TaskID(TaskChatPreferencesSync+":"+payload.SessionID))
	}

	_, err = c.client.EnqueueContext(ctx, task, opts...)
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if q := cfg.GetAsynqQueueName(); q != "" {
		return q
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
