package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Hashing.SignatureLength != 64 || cfg.Hashing.MinBlocksize != 3 {
		t.Errorf("Hashing = %+v, want length 64 and min blocksize 3", cfg.Hashing)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SPAMSUM_PORT", "9090")
	t.Setenv("SPAMSUM_API_KEYS", " key-a, ,key-b ")
	t.Setenv("SPAMSUM_AUTH_ENABLED", "false")
	t.Setenv("SPAMSUM_RATE_RPS", "2.5")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("SPAMSUM_SIGNATURE_LENGTH", "32")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if got := strings.Join(cfg.Auth.APIKeys, "|"); got != "key-a|key-b" {
		t.Errorf("Auth.APIKeys = %q, want key-a|key-b", got)
	}
	if cfg.Auth.Enabled {
		t.Error("Auth.Enabled should be false")
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("RateLimit.RequestsPerSecond = %v, want 2.5", cfg.RateLimit.RequestsPerSecond)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("Cache.TTL = %v, want 90s", cfg.Cache.TTL)
	}
	if cfg.Hashing.SignatureLength != 32 {
		t.Errorf("Hashing.SignatureLength = %d, want 32", cfg.Hashing.SignatureLength)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SPAMSUM_PORT", "not-a-number")
	t.Setenv("CACHE_TTL", "forever")

	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want fallback 8080", cfg.Server.Port)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want fallback 1h", cfg.Cache.TTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"rps", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }},
		{"burst", func(c *Config) { c.RateLimit.Burst = -1 }},
		{"cache entries", func(c *Config) { c.Cache.MaxEntries = -1 }},
		{"odd signature length", func(c *Config) { c.Hashing.SignatureLength = 63 }},
		{"min blocksize", func(c *Config) { c.Hashing.MinBlocksize = 0 }},
		{"max input", func(c *Config) { c.Hashing.MaxInputBytes = 0 }},
		{"batch docs", func(c *Config) { c.Batch.MaxDocuments = 0 }},
		{"batch ttl", func(c *Config) { c.Batch.JobTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
