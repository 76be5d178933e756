// Package config loads riskdesk configuration from an optional YAML file,
// with environment overrides applied on top (RISKDESK_* variables). Zero
// config is valid: the defaults run a local, canned-assistant instance.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the full riskdesk configuration tree.
type Config struct {
	LogLevel string      `yaml:"log_level" env:"RISKDESK_LOG_LEVEL"`
	HTTP     HTTPConfig  `yaml:"http"`
	Storage  Storage     `yaml:"storage"`
	Chat     ChatConfig  `yaml:"chat"`
	Simulate SimConfig   `yaml:"simulation"`
}

// HTTPConfig configures the API surface.
type HTTPConfig struct {
	Addr   string `yaml:"addr" env:"RISKDESK_HTTP_ADDR"`
	APIKey string `yaml:"api_key" env:"RISKDESK_API_KEY"`
}

// Storage selects and locates the snapshot backend.
type Storage struct {
	// Backend is "file" or "sqlite".
	Backend string `yaml:"backend" env:"RISKDESK_STORAGE_BACKEND"`
	// Path is the base directory (file) or database file (sqlite).
	Path string `yaml:"path" env:"RISKDESK_STORAGE_PATH"`
}

// ChatConfig configures the assistant backend.
type ChatConfig struct {
	// Provider is "canned", "anthropic" or "openai".
	Provider string `yaml:"provider" env:"RISKDESK_CHAT_PROVIDER"`
	Model    string `yaml:"model" env:"RISKDESK_CHAT_MODEL"`
	APIKey   string `yaml:"api_key" env:"RISKDESK_CHAT_API_KEY"`
	BaseURL  string `yaml:"base_url" env:"RISKDESK_CHAT_BASE_URL"`
	// ResponseDelayMS is the simulated round-trip latency for the canned
	// provider.
	ResponseDelayMS int `yaml:"response_delay_ms" env:"RISKDESK_CHAT_RESPONSE_DELAY_MS"`
}

// SimConfig configures the agent-event simulation.
type SimConfig struct {
	Enabled    bool   `yaml:"enabled" env:"RISKDESK_SIMULATION_ENABLED"`
	IntervalMS int    `yaml:"interval_ms" env:"RISKDESK_SIMULATION_INTERVAL_MS"`
	// Cron, when set, replaces the fixed interval with a cron expression
	// (minute granularity).
	Cron string `yaml:"cron" env:"RISKDESK_SIMULATION_CRON"`
}

// Default returns the zero-config instance.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		LogLevel: "INFO",
		HTTP: HTTPConfig{
			Addr: "127.0.0.1:8600",
		},
		Storage: Storage{
			Backend: "file",
			Path:    filepath.Join(home, ".riskdesk"),
		},
		Chat: ChatConfig{
			Provider:        "canned",
			ResponseDelayMS: 1200,
		},
		Simulate: SimConfig{
			Enabled:    true,
			IntervalMS: 45000,
		},
	}
}

// Load builds the config: defaults, then the YAML file at path (if path is
// non-empty it must exist), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Chat.Provider {
	case "canned", "anthropic", "openai":
	default:
		return fmt.Errorf("unknown chat provider %q", c.Chat.Provider)
	}
	if c.Chat.ResponseDelayMS < 0 {
		return fmt.Errorf("response_delay_ms must be >= 0")
	}
	if c.Simulate.IntervalMS <= 0 {
		return fmt.Errorf("simulation interval_ms must be > 0")
	}
	return nil
}
