package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
	"github.com/cscs/firecrest-ui-api/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// sessionLifetime bounds how long a session record may live in the store.
// The access token inside it expires much earlier and is refreshed in place.
const sessionLifetime = 12 * time.Hour

// ReasonInvalidToken is the fixed reason code attached to unauthorized
// errors raised for missing or unusable sessions.
const ReasonInvalidToken = "INVALID_OR_MISSING_AUTH_TOKEN"

var errSessionExpired = errors.New("session expired")

// UnauthorizedError signals that no usable session exists for the request.
// The HTTP layer turns it into a same-URL redirect (browser GETs) or a 401
// envelope (API calls).
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return "unauthorized: " + e.Reason
}

// ForcedLogoutError signals that the refresh grant was rejected and the
// browser must be sent to the identity provider's logout URL.
type ForcedLogoutError struct {
	LogoutURL string
	Err       error
}

func (e *ForcedLogoutError) Error() string {
	return fmt.Sprintf("forced logout: %v", e.Err)
}

func (e *ForcedLogoutError) Unwrap() error { return e.Err }

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
}

// AuthService orchestrates authentication flows: login against the IdP,
// session persistence, and access-token resolution with refresh-on-expiry.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore

	// refreshGroup serializes token refreshes per session key so
	// concurrent requests observing the same expired token trigger at
	// most one refresh grant.
	refreshGroup singleflight.Group
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth
// URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin completes an authentication flow by exchanging the code for
// profile claims and tokens, and persisting a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*domainauth.Session, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}

	login, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	session := domainauth.Session{
		ID:        uuid.NewString(),
		User:      login.User,
		Tokens:    login.Tokens,
		ExpiresAt: time.Now().Add(sessionLifetime),
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &session, nil
}

// GetSession retrieves a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// LogoutURL returns the identity provider's end-session URL.
func (s *AuthService) LogoutURL() string {
	return s.provider.LogoutURL()
}

// AccessTokenResult is the outcome of resolving an access token for a
// request. Refreshed is set when the session's token block was replaced, so
// the HTTP layer can re-sign and re-set the cookie.
type AccessTokenResult struct {
	Token     string
	Refreshed *domainauth.Session
}

// AccessToken resolves a live access token for the given session, refreshing
// it against the identity provider when the recorded expiration has passed.
// Exactly one resolution precedes every downstream API call; concurrent
// refreshes for the same session collapse into a single grant.
//
// Failure modes:
//   - missing/unusable session: session destroyed, *UnauthorizedError;
//   - rejected refresh grant: session destroyed, *ForcedLogoutError carrying
//     the IdP logout URL.
func (s *AuthService) AccessToken(ctx context.Context, sessionID string) (*AccessTokenResult, error) {
	if sessionID == "" {
		return nil, &UnauthorizedError{Reason: ReasonInvalidToken}
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, &UnauthorizedError{Reason: ReasonInvalidToken}
	}
	if session.Tokens.AccessToken == "" {
		// A session without a token block is unusable; drop it so the
		// next request starts a fresh login flow.
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, &UnauthorizedError{Reason: ReasonInvalidToken}
	}

	if !session.Tokens.Expired() {
		return &AccessTokenResult{Token: session.Tokens.AccessToken}, nil
	}

	refreshed, err, _ := s.refreshGroup.Do(sessionID, func() (any, error) {
		return s.refreshSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	sess := refreshed.(*domainauth.Session)
	return &AccessTokenResult{Token: sess.Tokens.AccessToken, Refreshed: sess}, nil
}

// refreshSession trades the session's refresh token for a new token block
// and persists the mutated session.
func (s *AuthService) refreshSession(ctx context.Context, session domainauth.Session) (*domainauth.Session, error) {
	tokens, err := s.provider.Refresh(ctx, session.Tokens.RefreshToken)
	if err != nil {
		// The refresh token is no longer usable; the session is dead.
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, &ForcedLogoutError{LogoutURL: s.provider.LogoutURL(), Err: err}
	}

	session.Tokens = tokens
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save refreshed session: %w", saveErr)
	}
	return &session, nil
}
