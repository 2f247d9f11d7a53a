package config

import (
	"fmt"
	"os"

	"github.com/zsiec/timeframe/pkg/timecode"
)

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := c.Timecode.Validate(); err != nil {
		return fmt.Errorf("timecode config: %w", err)
	}

	if c.Metrics.Enabled && c.Metrics.Port == c.Server.HTTPPort {
		return fmt.Errorf("metrics port %d collides with the HTTP port", c.Metrics.Port)
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.HTTPPort < 1 || s.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", s.HTTPPort)
	}

	if s.HTTP3Port != 0 {
		if s.HTTP3Port < 1 || s.HTTP3Port > 65535 {
			return fmt.Errorf("invalid HTTP3 port: %d", s.HTTP3Port)
		}
		if s.TLSCertFile == "" {
			return fmt.Errorf("TLS certificate file is required for HTTP/3")
		}
		if s.TLSKeyFile == "" {
			return fmt.Errorf("TLS key file is required for HTTP/3")
		}
		if _, err := os.Stat(s.TLSCertFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", s.TLSCertFile)
		}
		if _, err := os.Stat(s.TLSKeyFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", s.TLSKeyFile)
		}
	}

	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}

	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit.requests_per_second must be positive")
		}
		if s.RateLimit.Burst < 1 {
			return fmt.Errorf("rate_limit.burst must be at least 1")
		}
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if !r.Enabled {
		return nil
	}

	if len(r.Addresses) == 0 {
		return fmt.Errorf("at least one Redis address is required")
	}

	if r.DB < 0 {
		return fmt.Errorf("invalid Redis database number: %d", r.DB)
	}

	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}

	if r.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive")
	}

	if r.MinIdleConns < 0 {
		return fmt.Errorf("min_idle_conns cannot be negative")
	}

	if r.MinIdleConns > r.PoolSize {
		return fmt.Errorf("min_idle_conns cannot be greater than pool_size")
	}

	if r.PresetKey == "" {
		return fmt.Errorf("preset_key cannot be empty")
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"panic": true,
		"fatal": true,
		"error": true,
		"warn":  true,
		"info":  true,
		"debug": true,
		"trace": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text'")
	}

	if l.Output == "" {
		return fmt.Errorf("log output cannot be empty")
	}

	if l.Output != "stdout" && l.Output != "stderr" {
		if l.MaxSize <= 0 {
			return fmt.Errorf("max_size must be positive for file output")
		}
		if l.MaxBackups < 0 {
			return fmt.Errorf("max_backups cannot be negative")
		}
		if l.MaxAge < 0 {
			return fmt.Errorf("max_age cannot be negative")
		}
	}

	return nil
}

func (m *MetricsConfig) Validate() error {
	if !m.Enabled {
		return nil
	}

	if m.Port < 1 || m.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", m.Port)
	}

	if m.Path == "" {
		return fmt.Errorf("metrics path cannot be empty")
	}

	return nil
}

func (t *TimecodeConfig) Validate() error {
	if _, err := timecode.ParseFramerate(t.DefaultFramerate); err != nil {
		return fmt.Errorf("default_framerate: %w", err)
	}

	if t.ClockRate == 0 {
		return fmt.Errorf("clock_rate must be positive")
	}

	return nil
}

// Framerate returns the parsed default framerate. Validate guarantees
// it parses.
func (t *TimecodeConfig) Framerate() timecode.Framerate {
	fr, _ := timecode.ParseFramerate(t.DefaultFramerate)
	return fr
}
