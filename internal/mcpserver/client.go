package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Config holds the configuration for connecting to the platform API.
type Config struct {
	APIURL     string // Base URL, e.g. "http://localhost:3000"
	AdminToken string // Admin bearer token
}

// KahinClient is a pure HTTP client for the platform's admin API. The
// MCP surface is strictly read-only; this client has no write methods.
type KahinClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewKahinClient creates a new client for the platform API.
func NewKahinClient(cfg Config) *KahinClient {
	return &KahinClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the platform.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// envelope is the platform's standard response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// doRequest makes a GET request to the platform and returns the
// response payload, unwrapped from the standard envelope when present.
func (c *KahinClient) doRequest(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AdminToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var env envelope
	if json.Unmarshal(respBody, &env) == nil && env.Success != nil && len(env.Data) > 0 {
		return env.Data, nil
	}
	return json.RawMessage(respBody), nil
}

// ListMarkets returns a page of markets, optionally filtered by status.
func (c *KahinClient) ListMarkets(ctx context.Context, status, search string) (json.RawMessage, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if search != "" {
		q.Set("search", search)
	}
	return c.doRequest(ctx, "/admin/markets", q)
}

// TreasuryOverview returns the treasury snapshot.
func (c *KahinClient) TreasuryOverview(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, "/admin/treasury/overview", nil)
}

// DisputeStats returns aggregate dispute counts.
func (c *KahinClient) DisputeStats(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, "/admin/disputes/stats", nil)
}

// FindUser searches accounts by username or email.
func (c *KahinClient) FindUser(ctx context.Context, query string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("search", query)
	return c.doRequest(ctx, "/admin/users", q)
}

// RecentTransactions returns the latest ledger rows, optionally
// filtered by type or user.
func (c *KahinClient) RecentTransactions(ctx context.Context, txType, userID string) (json.RawMessage, error) {
	q := url.Values{}
	if txType != "" {
		q.Set("type", txType)
	}
	if userID != "" {
		q.Set("userId", userID)
	}
	return c.doRequest(ctx, "/admin/transactions", q)
}
