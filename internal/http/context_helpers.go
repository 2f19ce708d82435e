package httpx

import (
	"context"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	tokenContextKey   contextKey = "access_token"
)

// SetSessionInContext stores the session in the request context.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves the session from the request context.
func SessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*domainauth.Session)
	return session, ok
}

// SetAccessTokenInContext stores the resolved access token in the request context.
func SetAccessTokenInContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// AccessTokenFromContext retrieves the resolved access token.
// The RequireToken middleware guarantees it is set on protected routes.
func AccessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
