package filestore

// Package filestore provides the file-backed session store used when Redis
// is not configured (SESSION_FILE_DIR_PATH). One JSON file per session.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
	adapterredis "github.com/cscs/firecrest-ui-api/internal/adapters/redis"
)

// ErrNotFound aliases the Redis store's sentinel so callers handle both
// stores with a single errors.Is check.
var ErrNotFound = adapterredis.ErrNotFound

// SessionStore persists sessions as JSON files under a directory.
type SessionStore struct {
	dir string
}

// NewSessionStore creates a file-backed session store, creating the
// directory if needed.
func NewSessionStore(dir string) (*SessionStore, error) {
	if dir == "" {
		return nil, errors.New("session directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &SessionStore{dir: dir}, nil
}

func (s *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if time.Until(sess.ExpiresAt) <= 0 {
		return errors.New("session is expired")
	}

	path, err := s.path(sess.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// Write-then-rename so concurrent readers never see a partial record.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename session file: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	path, err := s.path(id)
	if err != nil {
		return domainauth.Session{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, fmt.Errorf("read session file: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal(data, &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Files have no TTL; expiry is enforced on read.
	if time.Now().After(sess.ExpiresAt) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil // Nothing to delete
	}

	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// path maps a session ID to its file, rejecting IDs that could escape the
// session directory.
func (s *SessionStore) path(id string) (string, error) {
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid session ID %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}
