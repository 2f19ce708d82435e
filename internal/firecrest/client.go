// Package firecrest is the single chokepoint for all outbound calls to the
// FirecREST backend API and to this app's own local API routes.
package firecrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Target selects where a call is routed and, with it, which error contract
// applies. It is a closed sum: APIRemote calls go to the FirecREST backend
// and fail with *ErrorResponse; APILocal calls go back into this app's own
// route handlers and fail with *LocalError carrying the route's JSON
// envelope verbatim.
type Target interface {
	isTarget()
}

type remoteTarget struct{}
type localTarget struct{}

func (remoteTarget) isTarget() {}
func (localTarget) isTarget()  {}

var (
	// APIRemote prefixes the configured backend base URL.
	APIRemote Target = remoteTarget{}
	// APILocal leaves the path unchanged (same-origin call).
	APILocal Target = localTarget{}
)

// ErrorResponse is the typed error raised for non-2xx remote-target
// responses. Message comes from the upstream body's "message" field;
// StatusText is the HTTP reason phrase for the upstream status code.
type ErrorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	StatusText string `json:"statusText"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("firecrest: %d %s: %s", e.StatusCode, e.StatusText, e.Message)
}

// LocalError carries a failed local route's error envelope as-is so callers
// can pattern-match on it.
type LocalError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *LocalError) Error() string {
	return fmt.Sprintf("local api: status %d: %s", e.StatusCode, string(e.Body))
}

// ReasonPhrase returns the standard reason phrase for a status code, falling
// back to "Internal Server Error" for unrecognized codes.
func ReasonPhrase(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Internal Server Error"
}

// Body is a request body with its content type. Use JSONBody or the
// multipart helpers in upload paths to construct one.
type Body struct {
	ContentType string
	Reader      io.Reader
}

// JSONBody encodes v as a JSON request body.
func JSONBody(v any) (*Body, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return &Body{ContentType: "application/json", Reader: bytes.NewReader(data)}, nil
}

// Call describes one request through the client.
type Call struct {
	Method string
	Path   string
	Target Target
	// Token is sent as an Authorization: Bearer header when set.
	Token string
	Query url.Values
	Body  *Body
	// Header entries are merged into the request, after the defaults.
	Header http.Header
}

// Client dispatches HTTP calls, normalizes JSON/blob responses and raises
// typed errors for non-2xx responses. Every call is attempted exactly once;
// there is no retry logic.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOptions groups constructor dependencies for Client.
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client // Optional, defaults to http.DefaultClient
	Logger     *slog.Logger // Optional, defaults to slog.Default
}

// NewClient creates a FirecREST API client.
func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: opts.BaseURL, httpClient: httpClient, logger: logger}
}

// BuildURL resolves a path against the call target: remote targets are
// prefixed with the configured backend base URL, local targets pass through
// unchanged.
func (c *Client) BuildURL(path string, target Target) string {
	if _, ok := target.(remoteTarget); ok {
		return c.baseURL + path
	}
	return path
}

// Do executes a call and decodes a JSON response body into out. A 204
// response resolves without touching out. Network failures propagate as
// errors; callers map them to user-facing shapes.
func (c *Client) Do(ctx context.Context, call Call, out any) error {
	resp, body, err := c.roundTrip(ctx, call)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", call.Path, err)
	}
	return nil
}

// DoBlob executes a call and returns the raw response body. A 204 response
// resolves to nil without reading a body.
func (c *Client) DoBlob(ctx context.Context, call Call) ([]byte, error) {
	resp, body, err := c.roundTrip(ctx, call)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return body, nil
}

// roundTrip performs the request and applies the per-target error contract.
func (c *Client) roundTrip(ctx context.Context, call Call) (*http.Response, []byte, error) {
	u := c.BuildURL(call.Path, call.Target)
	if len(call.Query) > 0 {
		u += "?" + call.Query.Encode()
	}

	var reader io.Reader
	if call.Body != nil {
		reader = call.Body.Reader
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, u, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request %s %s: %w", call.Method, call.Path, err)
	}
	if call.Body != nil && call.Body.ContentType != "" {
		req.Header.Set("Content-Type", call.Body.ContentType)
	}
	if call.Token != "" {
		req.Header.Set("Authorization", "Bearer "+call.Token)
	}
	for k, vs := range call.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", call.Method, call.Path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var body []byte
	if resp.StatusCode != http.StatusNoContent {
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("read response from %s: %w", call.Path, err)
		}
	}

	c.logger.DebugContext(ctx, "firecrest call",
		slog.String("method", call.Method),
		slog.String("path", call.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, body, nil
	}
	return nil, nil, errorForTarget(call.Target, resp.StatusCode, body)
}

// errorForTarget maps a failed response to the target's error contract.
func errorForTarget(target Target, status int, body []byte) error {
	if _, ok := target.(localTarget); ok {
		return &LocalError{StatusCode: status, Body: json.RawMessage(body)}
	}

	var envelope struct {
		Message string `json:"message"`
	}
	// Best effort: upstream error bodies are JSON with a message field, but
	// a plain-text body must not mask the status.
	_ = json.Unmarshal(body, &envelope)
	if envelope.Message == "" {
		envelope.Message = ReasonPhrase(status)
	}
	return &ErrorResponse{
		Message:    envelope.Message,
		StatusCode: status,
		StatusText: ReasonPhrase(status),
	}
}

// Get performs a GET call decoding JSON into out.
func (c *Client) Get(ctx context.Context, call Call, out any) error {
	call.Method = http.MethodGet
	return c.Do(ctx, call, out)
}

// Post performs a POST call decoding JSON into out.
func (c *Client) Post(ctx context.Context, call Call, out any) error {
	call.Method = http.MethodPost
	return c.Do(ctx, call, out)
}

// Put performs a PUT call decoding JSON into out.
func (c *Client) Put(ctx context.Context, call Call, out any) error {
	call.Method = http.MethodPut
	return c.Do(ctx, call, out)
}

// Patch performs a PATCH call decoding JSON into out.
func (c *Client) Patch(ctx context.Context, call Call, out any) error {
	call.Method = http.MethodPatch
	return c.Do(ctx, call, out)
}

// Delete performs a DELETE call decoding JSON into out.
func (c *Client) Delete(ctx context.Context, call Call, out any) error {
	call.Method = http.MethodDelete
	return c.Do(ctx, call, out)
}
