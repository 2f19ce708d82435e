package firecrest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientOptions{BaseURL: baseURL})
}

func TestBuildURL(t *testing.T) {
	c := newTestClient("https://backend.example")

	assert.Equal(t, "https://backend.example/status/systems", c.BuildURL("/status/systems", APIRemote))
	assert.Equal(t, "/api/notifications", c.BuildURL("/api/notifications", APILocal))
}

func TestDoDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":"hello"}`))
	}))
	defer srv.Close()

	var out struct {
		Value string `json:"value"`
	}
	err := newTestClient(srv.URL).Get(context.Background(), Call{
		Path:   "/thing",
		Target: APIRemote,
		Token:  "token-1",
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Value)
}

func TestDoNoContentSkipsDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	out := struct {
		Value string `json:"value"`
	}{Value: "untouched"}
	err := newTestClient(srv.URL).Delete(context.Background(), Call{
		Path:   "/thing",
		Target: APIRemote,
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "untouched", out.Value)
}

func TestRemoteErrorContract(t *testing.T) {
	t.Run("message from upstream body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"invalid path"}`))
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).Get(context.Background(), Call{Path: "/x", Target: APIRemote}, nil)
		require.Error(t, err)

		var er *ErrorResponse
		require.ErrorAs(t, err, &er)
		assert.Equal(t, "invalid path", er.Message)
		assert.Equal(t, http.StatusBadRequest, er.StatusCode)
		assert.Equal(t, "Bad Request", er.StatusText)
	})

	t.Run("non-JSON body falls back to reason phrase", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream exploded"))
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).Get(context.Background(), Call{Path: "/x", Target: APIRemote}, nil)

		var er *ErrorResponse
		require.ErrorAs(t, err, &er)
		assert.Equal(t, "Bad Gateway", er.Message)
		assert.Equal(t, "Bad Gateway", er.StatusText)
	})
}

func TestLocalErrorContract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"type":"validation","message":"bad input"}`))
	}))
	defer srv.Close()

	// Local targets use the path as-is, so point the path at the test server.
	err := newTestClient("unused").Get(context.Background(), Call{
		Path:   srv.URL + "/api/local-route",
		Target: APILocal,
	}, nil)
	require.Error(t, err)

	var le *LocalError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, http.StatusUnprocessableEntity, le.StatusCode)
	assert.JSONEq(t, `{"type":"validation","message":"bad input"}`, string(le.Body))
}

func TestReasonPhrase(t *testing.T) {
	assert.Equal(t, "Not Found", ReasonPhrase(404))
	assert.Equal(t, "Request Timeout", ReasonPhrase(408))
	assert.Equal(t, "Internal Server Error", ReasonPhrase(599))
}

func TestQueryEncoding(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	call := Call{Path: "/fs", Target: APIRemote}
	call.Query = map[string][]string{"path": {"/scratch/my dir"}}
	err := newTestClient(srv.URL).Get(context.Background(), call, nil)
	require.NoError(t, err)
	assert.Equal(t, "path=%2Fscratch%2Fmy+dir", gotQuery)
}
