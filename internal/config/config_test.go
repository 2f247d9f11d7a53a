package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 0, cfg.Server.HTTP3Port)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 400, cfg.Server.RateLimit.Burst)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "timeframe:presets", cfg.Redis.PresetKey)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, "29.97DF", cfg.Timecode.DefaultFramerate)
	assert.Equal(t, uint32(90000), cfg.Timecode.ClockRate)
	assert.Equal(t, "29.97DF", cfg.Timecode.Framerate().String())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 8181
  rate_limit:
    requests_per_second: 5
    burst: 10

redis:
  enabled: true
  addresses:
    - "redis:6379"
  pool_size: 50

logging:
  level: "debug"
  format: "text"

metrics:
  enabled: false

timecode:
  default_framerate: "25"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.HTTPPort)
	assert.Equal(t, 5.0, cfg.Server.RateLimit.RequestsPerSecond)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"redis:6379"}, cfg.Redis.Addresses)
	assert.Equal(t, 50, cfg.Redis.PoolSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 25, cfg.Timecode.Framerate().BaseRate())
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("TIMEFRAME_SERVER_HTTP_PORT", "9999")
	t.Setenv("TIMEFRAME_TIMECODE_DEFAULT_FRAMERATE", "59.94DF")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.HTTPPort)
	assert.Equal(t, "59.94DF", cfg.Timecode.Framerate().String())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "unknown default framerate",
			content: "timecode:\n  default_framerate: \"31.5\"\n",
			errMsg:  "default_framerate",
		},
		{
			name:    "http3 without certificates",
			content: "server:\n  http3_port: 8443\n",
			errMsg:  "TLS certificate file is required",
		},
		{
			name:    "metrics port collides",
			content: "server:\n  http_port: 9090\n",
			errMsg:  "collides",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
