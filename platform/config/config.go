// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// APIConfig provides settings for the remote lead-qualification API.
type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

// ChatConfig provides settings for the guided conversation collector.
type ChatConfig interface {
	GetChatTimeout() time.Duration
	GetChatOrdering() string
	GetChatBooleanMode() string
	GetChatAffirmatives() []string
	GetChatScriptPath() string
	GetChatMinSubmitInterval() time.Duration
}

// LeadConfig provides settings for local lead previews.
type LeadConfig interface {
	GetPhoneDefaultRegion() string
}

// SessionConfig provides settings for the persisted auth session.
type SessionConfig interface {
	GetRedisURL() string
	GetSessionTokenKey() string
}

// SchedulerConfig provides settings for the background preference sync queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// HTTPConfig provides settings for the chat gateway HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	APIBaseURL            string
	APITimeout            time.Duration
	ChatTimeout           time.Duration
	ChatOrdering          string
	ChatBooleanMode       string
	ChatAffirmatives      []string
	ChatScriptPath        string
	ChatMinSubmitInterval time.Duration
	PhoneDefaultRegion    string
	RedisURL              string
	RedisTLSInsecure      bool
	SessionTokenKey       string
	AsynqQueueName        string
	AsynqConcurrency      int
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// APIConfig implementation
func (c *Config) GetAPIBaseURL() string         { return c.APIBaseURL }
func (c *Config) GetAPITimeout() time.Duration { return c.APITimeout }

// ChatConfig implementation
func (c *Config) GetChatTimeout() time.Duration           { return c.ChatTimeout }
func (c *Config) GetChatOrdering() string                 { return c.ChatOrdering }
func (c *Config) GetChatBooleanMode() string              { return c.ChatBooleanMode }
func (c *Config) GetChatAffirmatives() []string           { return c.ChatAffirmatives }
func (c *Config) GetChatScriptPath() string               { return c.ChatScriptPath }
func (c *Config) GetChatMinSubmitInterval() time.Duration { return c.ChatMinSubmitInterval }

// LeadConfig implementation
func (c *Config) GetPhoneDefaultRegion() string { return c.PhoneDefaultRegion }

// SessionConfig / SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetSessionTokenKey() string { return c.SessionTokenKey }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		APIBaseURL:            strings.TrimRight(firstEnv("http://localhost:8000", "API_BASE_URL", "VITE_API_BASE_URL", "VITE_API_URL"), "/"),
		APITimeout:            mustDuration(getEnv("API_TIMEOUT", "15s")),
		ChatTimeout:           mustDuration(getEnv("CHAT_TIMEOUT", "30s")),
		ChatOrdering:          strings.ToLower(getEnv("CHAT_ORDERING", "latest")),
		ChatBooleanMode:       strings.ToLower(getEnv("CHAT_BOOLEAN_MODE", "prefix")),
		ChatAffirmatives:      splitCSV(getEnv("CHAT_AFFIRMATIVE", "")),
		ChatScriptPath:        getEnv("CHAT_SCRIPT_PATH", ""),
		ChatMinSubmitInterval: mustDuration(getEnv("CHAT_MIN_SUBMIT_INTERVAL", "750ms")),
		PhoneDefaultRegion:    strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "CO")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		SessionTokenKey:       getEnv("SESSION_TOKEN_KEY", "fullhouse_token"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be a positive duration")
	}
	switch c.ChatOrdering {
	case "latest", "arrival":
	default:
		return fmt.Errorf("CHAT_ORDERING must be latest or arrival, got %q", c.ChatOrdering)
	}
	switch c.ChatBooleanMode {
	case "prefix", "token":
	default:
		return fmt.Errorf("CHAT_BOOLEAN_MODE must be prefix or token, got %q", c.ChatBooleanMode)
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
