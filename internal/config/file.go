package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config for on-disk files. Durations are strings so
// YAML and TOML parse identically; bools and ints are pointers so an
// absent key is distinguishable from an explicit zero value.
type fileConfig struct {
	Backend struct {
		URL            string `yaml:"url" toml:"url"`
		RequestTimeout string `yaml:"request_timeout" toml:"request_timeout"`
		ProbeTimeout   string `yaml:"probe_timeout" toml:"probe_timeout"`
		RetryMax       *int   `yaml:"retry_max" toml:"retry_max"`
	} `yaml:"backend" toml:"backend"`
	Session struct {
		IdleThreshold string `yaml:"idle_threshold" toml:"idle_threshold"`
		SweepInterval string `yaml:"sweep_interval" toml:"sweep_interval"`
	} `yaml:"session" toml:"session"`
	Export struct {
		Dir      string `yaml:"dir" toml:"dir"`
		Compress *bool  `yaml:"compress" toml:"compress"`
	} `yaml:"export" toml:"export"`
	Logging struct {
		Level       string `yaml:"level" toml:"level"`
		Development *bool  `yaml:"development" toml:"development"`
	} `yaml:"logging" toml:"logging"`
	RateLimit struct {
		RequestsPerSecond *int `yaml:"requests_per_second" toml:"requests_per_second"`
		Burst             *int `yaml:"burst" toml:"burst"`
	} `yaml:"rate_limit" toml:"rate_limit"`
	Breaker struct {
		Enabled   *bool  `yaml:"enabled" toml:"enabled"`
		Threshold *int   `yaml:"threshold" toml:"threshold"`
		Cooldown  string `yaml:"cooldown" toml:"cooldown"`
	} `yaml:"breaker" toml:"breaker"`
}

// FromFile loads configuration from a YAML or TOML file, selected by
// extension. Keys absent from the file keep their default values.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse yaml config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse toml config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", ext)
	}

	cfg := Default()
	if err := fc.merge(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (fc *fileConfig) merge(cfg *Config) error {
	if fc.Backend.URL != "" {
		cfg.Backend.URL = fc.Backend.URL
	}
	if err := setDuration(&cfg.Backend.RequestTimeout, fc.Backend.RequestTimeout, "backend.request_timeout"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Backend.ProbeTimeout, fc.Backend.ProbeTimeout, "backend.probe_timeout"); err != nil {
		return err
	}
	if fc.Backend.RetryMax != nil {
		cfg.Backend.RetryMax = *fc.Backend.RetryMax
	}

	if err := setDuration(&cfg.Session.IdleThreshold, fc.Session.IdleThreshold, "session.idle_threshold"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Session.SweepInterval, fc.Session.SweepInterval, "session.sweep_interval"); err != nil {
		return err
	}

	if fc.Export.Dir != "" {
		cfg.Export.Dir = fc.Export.Dir
	}
	if fc.Export.Compress != nil {
		cfg.Export.Compress = *fc.Export.Compress
	}

	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.Development != nil {
		cfg.Logging.Development = *fc.Logging.Development
	}

	if fc.RateLimit.RequestsPerSecond != nil {
		cfg.RateLimit.RequestsPerSecond = *fc.RateLimit.RequestsPerSecond
	}
	if fc.RateLimit.Burst != nil {
		cfg.RateLimit.Burst = *fc.RateLimit.Burst
	}

	if fc.Breaker.Enabled != nil {
		cfg.Breaker.Enabled = *fc.Breaker.Enabled
	}
	if fc.Breaker.Threshold != nil {
		cfg.Breaker.Threshold = *fc.Breaker.Threshold
	}
	if err := setDuration(&cfg.Breaker.Cooldown, fc.Breaker.Cooldown, "breaker.cooldown"); err != nil {
		return err
	}

	return nil
}

func setDuration(dst *time.Duration, raw, key string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config key %s: %w", key, err)
	}
	*dst = d
	return nil
}
