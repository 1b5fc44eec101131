package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Hashing   HashingConfig
	Batch     BatchConfig
	Webhook   WebhookConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// ShutdownTimeout bounds how long in-flight requests may drain.
	ShutdownTimeout time.Duration // default: 5s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the signature cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached signatures. 0 disables
	// the cache.
	MaxEntries int // default: 1000

	// TTL is how long a cached signature stays valid.
	TTL time.Duration // default: 1h
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// HashingConfig controls signature geometry and input limits.
type HashingConfig struct {
	// SignatureLength bounds the primary signature string.
	SignatureLength int // default: 64

	// MinBlocksize is the smallest blocksize the generator guesses.
	MinBlocksize int // default: 3

	// MaxInputBytes is the largest document accepted after decoding.
	MaxInputBytes int // default: 10 MiB
}

// BatchConfig controls asynchronous batch hashing jobs.
type BatchConfig struct {
	// MaxDocuments is the maximum number of documents per batch.
	MaxDocuments int // default: 100

	// JobTTL is how long finished jobs stay queryable.
	JobTTL time.Duration // default: 1h
}

// WebhookConfig controls batch completion webhooks.
type WebhookConfig struct {
	// Secret signs webhook bodies with HMAC-SHA256 when non-empty.
	Secret string
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file, using system environment", "error", err)
	}

	return &Config{
		Server: ServerConfig{
			Host:            envOr("SPAMSUM_HOST", "0.0.0.0"),
			Port:            envIntOr("SPAMSUM_PORT", 8080),
			Mode:            envOr("SPAMSUM_MODE", "release"),
			ShutdownTimeout: envDurationOr("SPAMSUM_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SPAMSUM_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SPAMSUM_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SPAMSUM_RATE_RPS", 5.0),
			Burst:             envIntOr("SPAMSUM_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("CACHE_TTL", time.Hour),
		},
		Log: LogConfig{
			Level:  envOr("SPAMSUM_LOG_LEVEL", "info"),
			Format: envOr("SPAMSUM_LOG_FORMAT", "json"),
		},
		Hashing: HashingConfig{
			SignatureLength: envIntOr("SPAMSUM_SIGNATURE_LENGTH", 64),
			MinBlocksize:    envIntOr("SPAMSUM_MIN_BLOCKSIZE", 3),
			MaxInputBytes:   envIntOr("SPAMSUM_MAX_INPUT_BYTES", 10<<20),
		},
		Batch: BatchConfig{
			MaxDocuments: envIntOr("SPAMSUM_BATCH_MAX_DOCS", 100),
			JobTTL:       envDurationOr("SPAMSUM_BATCH_TTL", time.Hour),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("SPAMSUM_WEBHOOK_SECRET"),
		},
	}
}

// Validate reports the first configuration value that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SPAMSUM_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		slog.Warn("auth enabled without SPAMSUM_API_KEYS, API is open")
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("SPAMSUM_RATE_RPS must be greater than 0")
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("SPAMSUM_RATE_BURST must be greater than 0")
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must not be negative")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be greater than 0")
	}
	if c.Hashing.SignatureLength < 2 || c.Hashing.SignatureLength%2 != 0 {
		return fmt.Errorf("SPAMSUM_SIGNATURE_LENGTH must be an even number >= 2, got %d", c.Hashing.SignatureLength)
	}
	if c.Hashing.MinBlocksize < 1 {
		return fmt.Errorf("SPAMSUM_MIN_BLOCKSIZE must be >= 1, got %d", c.Hashing.MinBlocksize)
	}
	if c.Hashing.MaxInputBytes <= 0 {
		return fmt.Errorf("SPAMSUM_MAX_INPUT_BYTES must be greater than 0")
	}
	if c.Batch.MaxDocuments <= 0 {
		return fmt.Errorf("SPAMSUM_BATCH_MAX_DOCS must be greater than 0")
	}
	if c.Batch.JobTTL <= 0 {
		return fmt.Errorf("SPAMSUM_BATCH_TTL must be greater than 0")
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
