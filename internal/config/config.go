package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds runtime settings for mysqlplan.
// Values come from an optional YAML file; environment variables always override it.
// Diagnostic thresholds are fixed in the analyzer and are not configurable here.
type Config struct {
	LogLevel string `yaml:"log_level" env:"MYSQLPLAN_LOG_LEVEL" env-default:"warn"`

	// FetchConcurrency bounds how many tables have their metadata fetched at once.
	FetchConcurrency int `yaml:"fetch_concurrency" env:"MYSQLPLAN_FETCH_CONCURRENCY" env-default:"4"`
	// FetchTimeout bounds each table's metadata fetch; 0 disables the bound.
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"MYSQLPLAN_FETCH_TIMEOUT" env-default:"5s"`

	ExplainTimeout time.Duration `yaml:"explain_timeout" env:"MYSQLPLAN_EXPLAIN_TIMEOUT" env-default:"30s"`
}

// Load reads path (if non-empty) with environment overrides, or the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch_concurrency must be at least 1, got %d", c.FetchConcurrency)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must not be negative")
	}
	if c.ExplainTimeout < 0 {
		return fmt.Errorf("explain_timeout must not be negative")
	}
	return nil
}
