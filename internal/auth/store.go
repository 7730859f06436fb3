package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fullhouse_client/platform/config"

	"github.com/redis/go-redis/v9"
)

// DefaultTokenKey is the storage key the browser client used for the bearer token.
const DefaultTokenKey = "fullhouse_token"

// TokenStore persists the bearer token between process runs.
// Load returns "" with a nil error when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// RedisStore keeps the token under a single Redis key.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore wraps an existing client. An empty key falls back to DefaultTokenKey.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultTokenKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

// NewRedisStoreFromConfig dials the configured Redis URL.
func NewRedisStoreFromConfig(cfg config.SessionConfig) (*RedisStore, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opt), cfg.GetSessionTokenKey()), nil
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Save(ctx context.Context, token string) error {
	if err := s.rdb.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// NewTokenStore picks the Redis store when a URL is configured and the memory store otherwise.
func NewTokenStore(cfg config.SessionConfig) (TokenStore, error) {
	if cfg.GetRedisURL() == "" {
		return NewMemoryStore(), nil
	}
	return NewRedisStoreFromConfig(cfg)
}
