package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all client configuration.
type Config struct {
	Backend   BackendConfig
	Session   SessionConfig
	Export    ExportConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Breaker   BreakerConfig
}

// BackendConfig holds connection settings for the analysis backend.
type BackendConfig struct {
	URL            string        `envconfig:"BACKEND_URL" default:"http://localhost:8000"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ProbeTimeout   time.Duration `envconfig:"PROBE_TIMEOUT" default:"5s"`
	RetryMax       int           `envconfig:"RETRY_MAX" default:"0"`
}

// SessionConfig holds local session lifecycle settings.
type SessionConfig struct {
	IdleThreshold time.Duration `envconfig:"IDLE_THRESHOLD" default:"1h"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
}

// ExportConfig holds GraphML export settings.
type ExportConfig struct {
	Dir      string `envconfig:"EXPORT_DIR" default:"."`
	Compress bool   `envconfig:"EXPORT_COMPRESS" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig paces outbound requests. Zero means unlimited.
type RateLimitConfig struct {
	RequestsPerSecond int `envconfig:"RATE_LIMIT_RPS" default:"0"`
	Burst             int `envconfig:"RATE_LIMIT_BURST" default:"1"`
}

// BreakerConfig holds circuit breaker settings for the transport.
type BreakerConfig struct {
	Enabled   bool          `envconfig:"BREAKER_ENABLED" default:"true"`
	Threshold int           `envconfig:"BREAKER_THRESHOLD" default:"5"`
	Cooldown  time.Duration `envconfig:"BREAKER_COOLDOWN" default:"30s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:            "http://localhost:8000",
			RequestTimeout: 30 * time.Second,
			ProbeTimeout:   5 * time.Second,
			RetryMax:       0,
		},
		Session: SessionConfig{
			IdleThreshold: time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Export: ExportConfig{
			Dir:      ".",
			Compress: false,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             1,
		},
		Breaker: BreakerConfig{
			Enabled:   true,
			Threshold: 5,
			Cooldown:  30 * time.Second,
		},
	}
}
