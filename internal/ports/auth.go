package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// LoginResult is the outcome of a completed code exchange: the profile
// claims and the token block to store in the session.
type LoginResult struct {
	User   domainauth.AuthUser
	Tokens domainauth.TokenSet
}

// AuthProvider initiates and completes an authentication flow against an IdP
// and refreshes expired access tokens.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce.
	Exchange(ctx context.Context, in ExchangeInput) (LoginResult, error)

	// Refresh trades a refresh token for a new token block. The returned
	// ExpirationDate includes the provider's clock-skew buffer.
	Refresh(ctx context.Context, refreshToken string) (domainauth.TokenSet, error)

	// LogoutURL is the IdP end-session URL the browser is sent to on a
	// forced logout.
	LogoutURL() string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}
