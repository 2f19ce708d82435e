package config

import "strings"

// KeycloakConfig contains Keycloak/OIDC configuration.
// All variables are read with the KEYCLOAK_ prefix.
type KeycloakConfig struct {
	// Domain is the Keycloak host (without scheme), e.g. "auth.example.org".
	Domain string `env:"DOMAIN,required"`

	// Realm is the Keycloak realm that holds the dashboard users.
	Realm string `env:"REALM,required"`

	ClientID     string `env:"CLIENT_ID,required"`
	ClientSecret string `env:"CLIENT_SECRET,required"`

	// CallbackURL is the absolute redirect URL registered with Keycloak,
	// e.g. "https://dashboard.example.org/auth/callback".
	CallbackURL string `env:"CALLBACK_URL,required"`

	// LogoutRedirectURL is where Keycloak sends the browser after logout.
	LogoutRedirectURL string `env:"LOGOUT_REDIRECT_URL" envDefault:"/"`

	// UseSSL selects https for the issuer URL.
	UseSSL bool `env:"USE_SSL" envDefault:"true"`
}

// Sanitize normalises the Keycloak configuration values.
func (c *KeycloakConfig) Sanitize() {
	c.Domain = strings.TrimSuffix(strings.TrimSpace(c.Domain), "/")
}

// IssuerURL returns the OIDC issuer URL for the configured realm.
func (c *KeycloakConfig) IssuerURL() string {
	return c.scheme() + "://" + c.Domain + "/realms/" + c.Realm
}

// TokenURL returns the realm's token endpoint, used for refresh grants.
func (c *KeycloakConfig) TokenURL() string {
	return c.IssuerURL() + "/protocol/openid-connect/token"
}

// LogoutURL returns the realm's end-session endpoint with the post-logout
// redirect applied.
func (c *KeycloakConfig) LogoutURL() string {
	return c.IssuerURL() + "/protocol/openid-connect/logout?redirect_uri=" + c.LogoutRedirectURL
}

func (c *KeycloakConfig) scheme() string {
	if c.UseSSL {
		return "https"
	}
	return "http"
}
