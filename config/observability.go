package config

import (
	"log/slog"
	"strings"
)

// ObservabilityConfig groups logging and error-tracking configuration.
type ObservabilityConfig struct {
	// LoggingLevel is one of debug, info, warn, error.
	LoggingLevel string `env:"LOGGING_LEVEL" envDefault:"info"`

	Sentry SentryConfig `envPrefix:"SENTRY_"`
}

// Sanitize normalises observability configuration values.
func (c *ObservabilityConfig) Sanitize() {
	c.LoggingLevel = strings.ToLower(strings.TrimSpace(c.LoggingLevel))
	c.Sentry.Sanitize()
}

// SlogLevel maps the configured logging level to a slog.Level.
// Unrecognised values fall back to info.
func (c *ObservabilityConfig) SlogLevel() slog.Level {
	switch c.LoggingLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SentryConfig controls the Sentry error-tracking integration.
type SentryConfig struct {
	Active           bool    `env:"ACTIVE"             envDefault:"false"`
	DSN              string  `env:"DSN"                envDefault:""`
	Debug            bool    `env:"DEBUG"              envDefault:"false"`
	TracesSampleRate float64 `env:"TRACES_SAMPLE_RATE" envDefault:"0"`
}

// Sanitize normalises Sentry configuration values. Sentry without a DSN
// is disabled.
func (c *SentryConfig) Sanitize() {
	c.DSN = strings.TrimSpace(c.DSN)
	if c.DSN == "" {
		c.Active = false
	}
	if c.TracesSampleRate < 0 {
		c.TracesSampleRate = 0
	}
	if c.TracesSampleRate > 1 {
		c.TracesSampleRate = 1
	}
}
