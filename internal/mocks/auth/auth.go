package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"sync"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
	"github.com/cscs/firecrest-ui-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce
// handling. Individual methods can be overridden per test via the Func fields.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (ports.LoginResult, error)
	RefreshFunc  func(ctx context.Context, refreshToken string) (domainauth.TokenSet, error)

	// Deterministic values for predictable testing
	AuthURL       string
	EndSessionURL string
	DefaultLogin  ports.LoginResult

	mu           sync.Mutex
	beginCount   int
	refreshCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:       "https://mock-idp/auth",
		EndSessionURL: "https://mock-idp/logout",
		DefaultLogin: ports.LoginResult{
			User: domainauth.AuthUser{
				Username:  "mockuser",
				Email:     "mock.user@example.com",
				FirstName: "Mock",
				LastName:  "User",
			},
			Tokens: domainauth.TokenSet{
				AccessToken:  "mock-access-token",
				RefreshToken: "mock-refresh-token",
			},
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.beginCount++
	n := m.beginCount
	m.mu.Unlock()

	return m.AuthURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.LoginResult, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	return m.DefaultLogin, nil
}

func (m *MockAuthProvider) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenSet, error) {
	m.mu.Lock()
	m.refreshCount++
	m.mu.Unlock()

	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return m.DefaultLogin.Tokens, nil
}

func (m *MockAuthProvider) LogoutURL() string {
	return m.EndSessionURL
}

// RefreshCount reports how many times Refresh was invoked.
func (m *MockAuthProvider) RefreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshCount
}

// MemorySessionStore is a thread-safe in-memory session store for tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	// SaveErr, GetErr, and DeleteErr force the corresponding operation to
	// fail when set.
	SaveErr   error
	GetErr    error
	DeleteErr error
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *MemorySessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if s.GetErr != nil {
		return domainauth.Session{}, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, fmt.Errorf("session %q not found", id)
	}
	return sess, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
