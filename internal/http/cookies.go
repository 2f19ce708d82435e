package httpx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
)

const sessionCookieName = "session_id"

// CookieManager signs and verifies the session cookie. The cookie value is
// "<session id>.<hmac>" so a tampered ID never reaches the session store.
type CookieManager struct {
	Secret []byte
	Domain string
}

// NewCookieManager creates a CookieManager from the configured session secret.
func NewCookieManager(secret, domain string) *CookieManager {
	return &CookieManager{Secret: []byte(secret), Domain: domain}
}

func (m *CookieManager) sign(sessionID string) string {
	mac := hmac.New(sha256.New, m.Secret)
	mac.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Encode produces the signed cookie value for a session ID.
func (m *CookieManager) Encode(sessionID string) string {
	return sessionID + "." + m.sign(sessionID)
}

// Decode verifies a signed cookie value and returns the session ID.
func (m *CookieManager) Decode(value string) (string, bool) {
	dot := strings.LastIndex(value, ".")
	if dot <= 0 {
		return "", false
	}
	sessionID, sig := value[:dot], value[dot+1:]
	if !hmac.Equal([]byte(sig), []byte(m.sign(sessionID))) {
		return "", false
	}
	return sessionID, true
}

// SetSession writes the signed session cookie based on the session's expiry.
func (m *CookieManager) SetSession(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    m.Encode(s.ID),
		Path:     "/",
		Domain:   m.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// ReadSession extracts and verifies the session ID from the request cookie.
func (m *CookieManager) ReadSession(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	return m.Decode(cookie.Value)
}

// ClearSession clears the session cookie on the client.
func (m *CookieManager) ClearSession(w http.ResponseWriter, r *http.Request) {
	m.clearCookie(w, r, sessionCookieName)
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when
// setting cookies to maximize compatibility across browsers during deletion.
func (m *CookieManager) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   m.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// setOAuthCookie stores a short-lived OAuth flow value (state, nonce,
// post-login redirect) in a secure cookie.
func (m *CookieManager) setOAuthCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   m.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
