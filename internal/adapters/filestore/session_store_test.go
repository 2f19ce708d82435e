package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)
	return store
}

func testSession(id string, expiresIn time.Duration) domainauth.Session {
	return domainauth.Session{
		ID: id,
		User: domainauth.AuthUser{
			Username: "jdoe",
			Email:    "jdoe@cscs.ch",
		},
		Tokens: domainauth.TokenSet{
			AccessToken:    "access",
			RefreshToken:   "refresh",
			ExpirationDate: time.Now().Add(5 * time.Minute),
		},
		ExpiresAt: time.Now().Add(expiresIn),
	}
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := testSession("abc-123", time.Hour)
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.User, got.User)
	assert.Equal(t, sess.Tokens.AccessToken, got.Tokens.AccessToken)
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetExpiredDeletesRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Save a live session, then age it on disk: Save refuses expired input.
	sess := testSession("expired-1", time.Minute)
	require.NoError(t, store.Save(ctx, sess))

	path, err := store.path(sess.ID)
	require.NoError(t, err)
	data := []byte(`{"id":"expired-1","expires_at":"2020-01-01T00:00:00Z"}`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = store.Get(ctx, "expired-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "expired record must be removed")
}

func TestSaveRejectsExpiredSession(t *testing.T) {
	store := newTestStore(t)
	err := store.Save(context.Background(), testSession("dead", -time.Minute))
	assert.Error(t, err)
}

func TestSaveRejectsEmptyID(t *testing.T) {
	store := newTestStore(t)
	err := store.Save(context.Background(), testSession("", time.Hour))
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("gone", time.Hour)))
	require.NoError(t, store.Delete(ctx, "gone"))

	_, err := store.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing session is not an error.
	assert.NoError(t, store.Delete(ctx, "gone"))
}

func TestPathTraversalRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"../escape", "a/b", `a\b`, "a..b"} {
		_, err := store.Get(ctx, id)
		assert.Error(t, err, "id %q must be rejected", id)
		assert.NotErrorIs(t, err, ErrNotFound)
	}
}

func TestOverwriteUpdatesRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := testSession("s1", time.Hour)
	require.NoError(t, store.Save(ctx, sess))

	sess.Tokens.AccessToken = "rotated"
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.Tokens.AccessToken)
}
