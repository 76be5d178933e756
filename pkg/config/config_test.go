package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "riskdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:8600", cfg.HTTP.Addr)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "canned", cfg.Chat.Provider)
	assert.Equal(t, 1200, cfg.Chat.ResponseDelayMS)
	assert.True(t, cfg.Simulate.Enabled)
	assert.Equal(t, 45000, cfg.Simulate.IntervalMS)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: DEBUG
http:
  addr: "0.0.0.0:9100"
storage:
  backend: sqlite
  path: /tmp/riskdesk.db
chat:
  provider: openai
  model: gpt-4o
simulation:
  enabled: false
  cron: "*/5 * * * *"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:9100", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/riskdesk.db", cfg.Storage.Path)
	assert.Equal(t, "openai", cfg.Chat.Provider)
	assert.Equal(t, "gpt-4o", cfg.Chat.Model)
	assert.False(t, cfg.Simulate.Enabled)
	assert.Equal(t, "*/5 * * * *", cfg.Simulate.Cron)
	// Untouched keys keep their defaults.
	assert.Equal(t, 45000, cfg.Simulate.IntervalMS)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
chat:
  provider: canned
http:
  addr: "127.0.0.1:7000"
`)
	t.Setenv("RISKDESK_CHAT_PROVIDER", "anthropic")
	t.Setenv("RISKDESK_CHAT_API_KEY", "sk-test")
	t.Setenv("RISKDESK_HTTP_ADDR", "127.0.0.1:7001")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Chat.Provider)
	assert.Equal(t, "sk-test", cfg.Chat.APIKey)
	assert.Equal(t, "127.0.0.1:7001", cfg.HTTP.Addr)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Storage.Backend = "redis" },
			wantErr: "storage backend",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Chat.Provider = "gemini" },
			wantErr: "chat provider",
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.Chat.ResponseDelayMS = -1 },
			wantErr: "response_delay_ms",
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Simulate.IntervalMS = 0 },
			wantErr: "interval_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
