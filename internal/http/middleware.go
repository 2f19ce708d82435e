package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
	"github.com/cscs/firecrest-ui-api/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// TokenResolver resolves a live access token for a session, refreshing it
// when expired. Implemented by service.AuthService.
type TokenResolver interface {
	AccessToken(ctx context.Context, sessionID string) (*service.AccessTokenResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// RequireToken returns a middleware that resolves the session's access token
// before the handler runs, so every downstream API call is preceded by
// exactly one token resolution. A refresh re-signs the session cookie into
// the response.
//
// Unauthorized browser GETs outside /api are redirected to the same URL
// (forcing a fresh login flow); API calls get a 401 envelope. A rejected
// refresh forces a logout redirect to the identity provider.
func RequireToken(resolver TokenResolver, cookies *CookieManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, ok := cookies.ReadSession(r)
			if !ok {
				denyUnauthorized(w, r, cookies, &service.UnauthorizedError{Reason: service.ReasonInvalidToken})
				return
			}

			result, err := resolver.AccessToken(r.Context(), sessionID)
			if err != nil {
				var forced *service.ForcedLogoutError
				if errors.As(err, &forced) {
					cookies.ClearSession(w, r)
					if isBrowserGet(r) {
						http.Redirect(w, r, forced.LogoutURL, http.StatusFound)
						return
					}
					WriteAPIError(w, r, forced, ErrorOpts{})
					return
				}
				denyUnauthorized(w, r, cookies, err)
				return
			}

			ctx := SetAccessTokenInContext(r.Context(), result.Token)
			if result.Refreshed != nil {
				// The token block changed; persist the re-signed cookie.
				cookies.SetSession(w, r, *result.Refreshed)
				ctx = SetSessionInContext(ctx, result.Refreshed)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession returns a middleware that attaches the session to the
// request context without resolving an access token. Used by routes that
// only need the user's identity or notification queue.
func RequireSession(resolver TokenResolver, cookies *CookieManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, ok := cookies.ReadSession(r)
			if !ok {
				denyUnauthorized(w, r, cookies, &service.UnauthorizedError{Reason: service.ReasonInvalidToken})
				return
			}

			session, err := resolver.GetSession(r.Context(), sessionID)
			if err != nil {
				denyUnauthorized(w, r, cookies, &service.UnauthorizedError{Reason: service.ReasonInvalidToken})
				return
			}

			ctx := SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// denyUnauthorized clears the session cookie, then either restarts the
// login flow (browser GET outside /api) or answers with a 401 envelope.
func denyUnauthorized(w http.ResponseWriter, r *http.Request, cookies *CookieManager, err error) {
	cookies.ClearSession(w, r)
	if isBrowserGet(r) {
		http.Redirect(w, r, r.URL.String(), http.StatusFound)
		return
	}
	WriteAPIError(w, r, err, ErrorOpts{})
}

// isBrowserGet reports whether the request is a page navigation rather than
// an API call.
func isBrowserGet(r *http.Request) bool {
	return r.Method == http.MethodGet && !strings.HasPrefix(r.URL.Path, "/api/")
}
