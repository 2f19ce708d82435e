package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// AuthUser represents the authenticated principal sourced from the identity
// provider's profile claims at login. Immutable for the session's lifetime.
type AuthUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TokenSet is the OAuth2 token block stored in a session.
// ExpirationDate already includes the clock-skew buffer applied when the
// tokens were obtained or refreshed.
type TokenSet struct {
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// Expired reports whether the access token's recorded expiration is in
// the past.
func (t TokenSet) Expired() bool {
	return !t.ExpirationDate.After(time.Now())
}

// NotificationMessage is an ephemeral message flashed into the session on one
// request and consumed (read once) on the next. A one-shot queue, not a log.
type NotificationMessage struct {
	ID        string `json:"id"` // generated UUID
	Type      string `json:"type"`
	Message   string `json:"message"`
	Displayed bool   `json:"displayed"`
}

// Session is the server-side record we persist for an authenticated user,
// keyed by a signed cookie. ID is an opaque session identifier.
// Created at the login callback, mutated on token refresh, destroyed on
// logout or invalid-token detection.
type Session struct {
	ID            string                `json:"id"`
	User          AuthUser              `json:"user"`
	Tokens        TokenSet              `json:"tokens"`
	Notifications []NotificationMessage `json:"notifications,omitempty"`
	ExpiresAt     time.Time             `json:"expires_at"`
}
