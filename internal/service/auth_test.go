package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
	"github.com/cscs/firecrest-ui-api/internal/mocks"
	mockauth "github.com/cscs/firecrest-ui-api/internal/mocks/auth"
	"github.com/cscs/firecrest-ui-api/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestAuthService(provider ports.AuthProvider, sessions ports.SessionStore) *AuthService {
	return NewAuthService(AuthServiceOptions{Provider: provider, Sessions: sessions})
}

func liveTokens() domainauth.TokenSet {
	return domainauth.TokenSet{
		AccessToken:    "live-access",
		RefreshToken:   "live-refresh",
		ExpirationDate: time.Now().Add(5 * time.Minute),
	}
}

func expiredTokens() domainauth.TokenSet {
	return domainauth.TokenSet{
		AccessToken:    "stale-access",
		RefreshToken:   "stale-refresh",
		ExpirationDate: time.Now().Add(-time.Minute),
	}
}

func storedSession(store *mockauth.MemorySessionStore, id string, tokens domainauth.TokenSet) domainauth.Session {
	sess := domainauth.Session{
		ID:        id,
		User:      domainauth.AuthUser{Username: "jdoe"},
		Tokens:    tokens,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	_ = store.Save(context.Background(), sess)
	return sess
}

func TestCompleteLoginPersistsSession(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(provider, store)

	sess, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "code-1",
		State: "state-1",
		Nonce: "nonce-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "mockuser", sess.User.Username)
	assert.Equal(t, 1, store.Len())

	got, err := svc.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestCompleteLoginValidation(t *testing.T) {
	svc := newTestAuthService(mockauth.NewMockAuthProvider(), mockauth.NewMemorySessionStore())

	_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{State: "s"})
	assert.Error(t, err)

	_, err = svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c"})
	assert.Error(t, err)
}

func TestAccessTokenLiveToken(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(provider, store)
	sess := storedSession(store, "s1", liveTokens())

	result, err := svc.AccessToken(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "live-access", result.Token)
	assert.Nil(t, result.Refreshed, "no refresh for a live token")
	assert.Equal(t, 0, provider.RefreshCount())
}

func TestAccessTokenRefreshesExpiredToken(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	provider.RefreshFunc = func(_ context.Context, refreshToken string) (domainauth.TokenSet, error) {
		assert.Equal(t, "stale-refresh", refreshToken)
		return domainauth.TokenSet{
			AccessToken:    "fresh-access",
			RefreshToken:   "fresh-refresh",
			ExpirationDate: time.Now().Add(5 * time.Minute),
		}, nil
	}
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(provider, store)
	sess := storedSession(store, "s1", expiredTokens())

	result, err := svc.AccessToken(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", result.Token)
	require.NotNil(t, result.Refreshed)
	assert.Equal(t, "fresh-refresh", result.Refreshed.Tokens.RefreshToken)

	// The refreshed token block is persisted.
	stored, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", stored.Tokens.AccessToken)
}

func TestAccessTokenConcurrentRefreshCollapses(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	release := make(chan struct{})
	provider.RefreshFunc = func(context.Context, string) (domainauth.TokenSet, error) {
		<-release
		return domainauth.TokenSet{
			AccessToken:    "fresh-access",
			RefreshToken:   "fresh-refresh",
			ExpirationDate: time.Now().Add(5 * time.Minute),
		}, nil
	}
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(provider, store)
	sess := storedSession(store, "s1", expiredTokens())

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*AccessTokenResult, workers)
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.AccessToken(context.Background(), sess.ID)
		}()
	}

	// Give the workers time to pile onto the in-flight refresh.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, "fresh-access", results[i].Token)
	}
	assert.Equal(t, 1, provider.RefreshCount(), "concurrent refreshes must collapse into one grant")
}

func TestAccessTokenRejectedRefreshForcesLogout(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	provider.RefreshFunc = func(context.Context, string) (domainauth.TokenSet, error) {
		return domainauth.TokenSet{}, errors.New("invalid_grant")
	}
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(provider, store)
	sess := storedSession(store, "s1", expiredTokens())

	_, err := svc.AccessToken(context.Background(), sess.ID)

	var forced *ForcedLogoutError
	require.ErrorAs(t, err, &forced)
	assert.Equal(t, provider.EndSessionURL, forced.LogoutURL)
	assert.Equal(t, 0, store.Len(), "dead session must be destroyed")
}

func TestAccessTokenMissingSession(t *testing.T) {
	svc := newTestAuthService(mockauth.NewMockAuthProvider(), mockauth.NewMemorySessionStore())

	_, err := svc.AccessToken(context.Background(), "unknown")

	var unauthorized *UnauthorizedError
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, ReasonInvalidToken, unauthorized.Reason)
}

func TestAccessTokenEmptyTokenBlockDestroysSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions := mocks.NewMockSessionStore(ctrl)
	sessions.EXPECT().Get(gomock.Any(), "s1").Return(domainauth.Session{
		ID:        "s1",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	sessions.EXPECT().Delete(gomock.Any(), "s1").Return(nil)

	svc := newTestAuthService(mockauth.NewMockAuthProvider(), sessions)

	_, err := svc.AccessToken(context.Background(), "s1")

	var unauthorized *UnauthorizedError
	require.ErrorAs(t, err, &unauthorized)
}

func TestGetSessionExpiredIsDeleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions := mocks.NewMockSessionStore(ctrl)
	sessions.EXPECT().Get(gomock.Any(), "old").Return(domainauth.Session{
		ID:        "old",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)
	sessions.EXPECT().Delete(gomock.Any(), "old").Return(nil)

	svc := newTestAuthService(mockauth.NewMockAuthProvider(), sessions)

	_, err := svc.GetSession(context.Background(), "old")
	assert.Error(t, err)
}

func TestLogout(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(mockauth.NewMockAuthProvider(), store)
	sess := storedSession(store, "s1", liveTokens())

	require.NoError(t, svc.Logout(context.Background(), sess.ID))
	assert.Equal(t, 0, store.Len())

	// Logging out with no session is a no-op.
	assert.NoError(t, svc.Logout(context.Background(), ""))
}
