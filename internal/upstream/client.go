// Package upstream is the thin HTTP client for the platform REST backend.
//
// It attaches the operator's bearer token, makes exactly one attempt per
// call, and passes backend error payloads upward unmodified. Resilience
// (the single read retry) lives in the query cache layer, not here.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/metrics"
	"github.com/kahinlabs/kahinadmin/internal/traces"
)

// genericErrorMessage is shown when the backend returns no message text.
const genericErrorMessage = "İşlem başarısız oldu"

// TokenSource supplies the current session token. Implemented by the
// session manager; consulted on every request, never cached here.
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx backend response. The Message carries the
// backend's text verbatim so handlers can surface it to the operator.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// Client is the REST client for the platform admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// New creates a new upstream client.
//
// baseURL is the API root, e.g. "https://api.kahin.example/api".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetTokenSource wires the session manager in after construction.
// The manager and the client reference each other, so one side has to
// be attached late.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"error"`
}

// do builds, sends, and decodes a single request against the backend.
// out may be nil for calls whose response body is not needed.
func (c *Client) do(ctx context.Context, resource, method, path string, query url.Values, reqBody, out any) error {
	ctx, span := traces.StartSpan(ctx, "upstream."+resource, traces.Resource(resource))
	defer span.End()

	timer := time.Now()
	outcome := "ok"
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues(resource).Observe(time.Since(timer).Seconds())
		metrics.UpstreamRequestsTotal.WithLabelValues(resource, outcome).Inc()
	}()

	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			outcome = "error"
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		outcome = "error"
		return fmt.Errorf("create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	// Token is read fresh on every request; never cached mid-session.
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "unreachable"
		return fmt.Errorf("upstream: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "error"
		return fmt.Errorf("upstream: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "error"
		return apiError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}

	// Unwrap the {success, data, message} envelope when present.
	var env envelope
	if err := json.Unmarshal(respBody, &env); err == nil && len(env.Data) > 0 {
		respBody = env.Data
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		outcome = "error"
		return fmt.Errorf("upstream: decode %s response: %w", resource, err)
	}

	return nil
}

// apiError extracts the backend's message text from the error body.
// No interpretation happens here; the text travels upward verbatim.
func apiError(status int, body []byte) error {
	var env envelope
	_ = json.Unmarshal(body, &env)

	msg := env.Message
	if msg == "" {
		msg = genericErrorMessage
	}
	code := env.Code
	if code == "" {
		code = "backend_error"
	}

	return &APIError{Status: status, Code: code, Message: msg}
}

func (c *Client) get(ctx context.Context, resource, path string, query url.Values, out any) error {
	return c.do(ctx, resource, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, resource, path string, body, out any) error {
	return c.do(ctx, resource, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, resource, path string, body, out any) error {
	return c.do(ctx, resource, http.MethodPut, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, resource, path string, body, out any) error {
	return c.do(ctx, resource, http.MethodPatch, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, resource, path string) error {
	return c.do(ctx, resource, http.MethodDelete, path, nil, nil, nil)
}

// WriteError translates a client error into the console's JSON error body.
// Backend messages pass through unmodified; list/cache state is untouched.
func WriteError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{
			"error":   apiErr.Code,
			"message": apiErr.Message,
		})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{
		"error":   "upstream_unreachable",
		"message": "Sunucuya ulaşılamıyor",
	})
}
