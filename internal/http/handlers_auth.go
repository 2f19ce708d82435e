package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
	"github.com/cscs/firecrest-ui-api/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc       AuthServiceInterface
	Cookies   *CookieManager
	LogoutURL string // identity provider end-session URL
	Logger    *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the login initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteAPIError(w, r, err, ErrorOpts{})
		return
	}

	// Store state, nonce, and the original redirect URI in secure cookies
	h.Cookies.setOAuthCookie(w, r, "oauth_state", result.State)
	h.Cookies.setOAuthCookie(w, r, "oauth_nonce", result.Nonce)
	h.Cookies.setOAuthCookie(w, r, "post_login_redirect", redirectURI)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteAPIError(w, r, &service.UnauthorizedError{Reason: "missing code or state parameter"}, ErrorOpts{})
		return
	}

	// Verify state and read nonce
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteAPIError(w, r, &service.UnauthorizedError{Reason: "invalid or missing state parameter"}, ErrorOpts{})
		return
	}
	nonce := ""
	if nonceCookie, nonceErr := r.Cookie("oauth_nonce"); nonceErr == nil {
		nonce = nonceCookie.Value
	}

	session, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonce,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "login completion failed", "error", err)
		WriteAPIError(w, r, errors.New("login completion failed"), ErrorOpts{})
		return
	}

	// Set session cookie and clear temporary OAuth cookies
	h.Cookies.SetSession(w, r, *session)
	h.Cookies.clearCookie(w, r, "oauth_state")
	h.Cookies.clearCookie(w, r, "oauth_nonce")

	http.Redirect(w, r, h.postLoginRedirect(w, r), http.StatusFound)
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := h.Cookies.ReadSession(r); ok {
		if logoutErr := h.Svc.Logout(r.Context(), sessionID); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	h.Cookies.ClearSession(w, r)

	// AJAX requests get a JSON payload pointing at the IdP logout URL;
	// regular requests redirect straight there.
	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": h.LogoutURL,
		})
		return
	}

	http.Redirect(w, r, h.LogoutURL, http.StatusFound)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.Cookies.ReadSession(r)
	if !ok {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionID)
	if err != nil {
		// Session is invalid or expired, clear the cookie
		h.Cookies.ClearSession(w, r)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          session.User,
		"expires_at":    session.ExpiresAt,
	})
}

// postLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) postLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if redirectCookie, err := r.Cookie("post_login_redirect"); err == nil {
		redirectURI = safeRedirectPath(redirectCookie.Value)
		h.Cookies.clearCookie(w, r, "post_login_redirect")
	}
	return redirectURI
}

// safeRedirectPath ensures the provided redirect is a same-origin relative
// path starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
