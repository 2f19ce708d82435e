package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the minimum environment for a successful parse.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("KEYCLOAK_DOMAIN", "auth.cscs.ch")
	t.Setenv("KEYCLOAK_REALM", "firecrest")
	t.Setenv("KEYCLOAK_CLIENT_ID", "dashboard")
	t.Setenv("KEYCLOAK_CLIENT_SECRET", "secret")
	t.Setenv("KEYCLOAK_CALLBACK_URL", "https://dashboard.cscs.ch/auth/callback")
	t.Setenv("FIRECREST_API_BASE_URL", "https://firecrest.cscs.ch/api/v2")
	t.Setenv("SESSION_SECRET", "cookie-signing-secret")
}

func TestParseDefaults(t *testing.T) {
	setRequiredEnv(t)

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Firecrest.JobsTimeout)
	assert.Equal(t, 100, cfg.UI.ListPaginateLimit)
	assert.Equal(t, int64(5242880), cfg.UI.FileUploadLimit)
	assert.False(t, cfg.Session.Redis.Active)
	assert.Equal(t, "./sessions", cfg.Session.FileDirPath)
	assert.False(t, cfg.Observability.Sentry.Active)
}

func TestParseMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_SECRET", "")

	var cfg AppConfig
	assert.Error(t, env.Parse(&cfg))
}

func TestKeycloakURLs(t *testing.T) {
	kc := KeycloakConfig{
		Domain:            "auth.cscs.ch",
		Realm:             "firecrest",
		LogoutRedirectURL: "https://dashboard.cscs.ch/",
		UseSSL:            true,
	}

	assert.Equal(t, "https://auth.cscs.ch/realms/firecrest", kc.IssuerURL())
	assert.Equal(t, "https://auth.cscs.ch/realms/firecrest/protocol/openid-connect/token", kc.TokenURL())
	assert.Equal(t,
		"https://auth.cscs.ch/realms/firecrest/protocol/openid-connect/logout?redirect_uri=https://dashboard.cscs.ch/",
		kc.LogoutURL())

	kc.UseSSL = false
	assert.Equal(t, "http://auth.cscs.ch/realms/firecrest", kc.IssuerURL())
}

func TestSanitizeGuardrails(t *testing.T) {
	cfg := AppConfig{
		Keycloak:  KeycloakConfig{Domain: " auth.cscs.ch/ "},
		Firecrest: FirecrestConfig{BaseURL: "https://firecrest.cscs.ch/api/v2/"},
		UI:        UIConfig{ListPaginateLimit: -1, FileUploadLimit: 0},
		Observability: ObservabilityConfig{
			LoggingLevel: " DEBUG ",
			Sentry:       SentryConfig{Active: true, DSN: "", TracesSampleRate: 3},
		},
	}
	cfg.Sanitize()

	assert.Equal(t, "auth.cscs.ch", cfg.Keycloak.Domain)
	assert.Equal(t, "https://firecrest.cscs.ch/api/v2", cfg.Firecrest.BaseURL)
	assert.Equal(t, 100, cfg.UI.ListPaginateLimit)
	assert.Equal(t, int64(5*1024*1024), cfg.UI.FileUploadLimit)
	assert.Equal(t, "debug", cfg.Observability.LoggingLevel)
	assert.False(t, cfg.Observability.Sentry.Active, "sentry without a DSN is disabled")
	assert.Equal(t, float64(1), cfg.Observability.Sentry.TracesSampleRate)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "warn", want: slog.LevelWarn},
		{level: "warning", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "bogus", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			c := ObservabilityConfig{LoggingLevel: tt.level}
			assert.Equal(t, tt.want, c.SlogLevel())
		})
	}
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "redis.internal", Port: "6380"}
	assert.Equal(t, "redis.internal:6380", r.Addr())
}
