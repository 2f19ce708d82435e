package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Keycloak/OIDC authentication configuration
//   - firecrest.go: FirecREST backend API configuration
//   - session.go: Session store configuration (file or Redis)
//   - http.go: HTTP server and UI limit configuration
//   - observability.go: Logging and Sentry configuration
type AppConfig struct {
	// Environment is the deployment environment name (e.g. "development",
	// "production"). Propagated to Sentry and the UI config endpoint.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// Keycloak authentication configuration
	Keycloak KeycloakConfig `envPrefix:"KEYCLOAK_"`

	// FirecREST backend configuration
	Firecrest FirecrestConfig

	// Session store configuration
	Session SessionConfig

	// HTTP server and UI configuration
	HTTP HTTPConfig
	UI   UIConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Keycloak.Sanitize()
	c.Firecrest.Sanitize()
	c.Session.Sanitize()
	c.HTTP.Sanitize()
	c.UI.Sanitize()
	c.Observability.Sanitize()
}

// IsDev returns true when the configured environment is a development one.
func (c *AppConfig) IsDev() bool {
	return c.Environment == "development" || c.Environment == "dev" || c.Environment == "local"
}
