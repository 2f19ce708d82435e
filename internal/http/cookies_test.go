package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieEncodeDecode(t *testing.T) {
	m := NewCookieManager("super-secret", "")

	value := m.Encode("session-123")
	id, ok := m.Decode(value)
	require.True(t, ok)
	assert.Equal(t, "session-123", id)
}

func TestCookieDecodeRejectsTampering(t *testing.T) {
	m := NewCookieManager("super-secret", "")
	value := m.Encode("session-123")

	tests := []struct {
		name  string
		value string
	}{
		{name: "swapped id", value: "session-456" + value[len("session-123"):]},
		{name: "stripped signature", value: "session-123"},
		{name: "empty", value: ""},
		{name: "just a dot", value: "."},
		{name: "wrong secret", value: NewCookieManager("other-secret", "").Encode("session-123")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := m.Decode(tt.value)
			assert.False(t, ok)
		})
	}
}

func TestCookieIDWithDots(t *testing.T) {
	// LastIndex split keeps IDs containing dots intact.
	m := NewCookieManager("super-secret", "")
	id, ok := m.Decode(m.Encode("a.b.c"))
	require.True(t, ok)
	assert.Equal(t, "a.b.c", id)
}

func TestSetAndReadSession(t *testing.T) {
	m := NewCookieManager("super-secret", "example.com")
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	m.SetSession(w, r, domainauth.Session{
		ID:        "s1",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "session_id", c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "example.com", c.Domain)
	assert.False(t, c.Secure, "plain HTTP request must not set Secure")
	assert.InDelta(t, 3600, c.MaxAge, 5)

	read := httptest.NewRequest(http.MethodGet, "/", nil)
	read.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	id, ok := m.ReadSession(read)
	require.True(t, ok)
	assert.Equal(t, "s1", id)
}

func TestSecureFlagBehindProxy(t *testing.T) {
	m := NewCookieManager("super-secret", "")
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	m.SetSession(w, r, domainauth.Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)})

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}

func TestClearSession(t *testing.T) {
	m := NewCookieManager("super-secret", "")
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	m.ClearSession(w, r)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
