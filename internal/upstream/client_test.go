package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahinlabs/kahinadmin/internal/listing"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, 5*time.Second)
	c.SetTokenSource(staticToken("tok-123"))
	return c, srv
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"markets": []any{}, "total": 0, "totalPages": 0})
	})

	_, err := c.ListMarkets(context.Background(), listing.Filters{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"markets": []any{}})
	})
	c.SetTokenSource(staticToken(""))

	_, err := c.ListMarkets(context.Background(), listing.Filters{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestBackendErrorPassedThroughVerbatim(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "market_already_resolved",
			"message": "Market zaten sonuçlandırılmış",
		})
	})

	err := c.CloseMarket(context.Background(), "42")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "market_already_resolved", apiErr.Code)
	assert.Equal(t, "Market zaten sonuçlandırılmış", apiErr.Message)
}

func TestBackendErrorGenericFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("not json"))
	})

	err := c.Logout(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, genericErrorMessage, apiErr.Message)
	assert.Equal(t, "backend_error", apiErr.Code)
}

func TestEnvelopeUnwrapped(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"markets":    []map[string]any{{"id": "m1", "title": "Seçim", "status": "open"}},
				"total":      1,
				"totalPages": 1,
			},
		})
	})

	page, err := c.ListMarkets(context.Background(), listing.Filters{Status: "open"})
	require.NoError(t, err)
	require.Len(t, page.Markets, 1)
	assert.Equal(t, "m1", page.Markets[0].ID)
	assert.Equal(t, 1, page.TotalPages)
}

func TestBareBodyDecoded(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"platformBalance": 1000.5,
			"activeUsers":     12,
			"liquidityStatus": "healthy",
		})
	})

	overview, err := c.Treasury(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000.5, overview.PlatformBalance)
	assert.Equal(t, 12, overview.ActiveUsers)
}

func TestSingleAttemptNoRetry(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.ListDeposits(context.Background(), listing.Filters{})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "client must make exactly one attempt")
}

func TestFilterQueryParams(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{"deposits": []any{}})
	})

	_, err := c.ListDeposits(context.Background(), listing.Filters{Status: "pending", Search: "ref42", Page: 2})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "status=pending")
	assert.Contains(t, gotQuery, "search=ref42")
	assert.Contains(t, gotQuery, "page=2")
}

func TestResolutionPreviewRefundOutcome(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "REFUND", r.URL.Query().Get("outcome"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"market":     map[string]any{"id": "m7", "status": "closed"},
			"resolution": map[string]any{"outcome": nil, "type": "refund"},
			"impact":     map[string]any{"totalHolders": 5, "totalPayout": 250.0, "winnersCount": 5, "losersCount": 0},
			"winners":    []map[string]any{{"userId": "u1", "payout": 50.0}},
		})
	})

	preview, err := c.ResolutionPreview(context.Background(), "m7", "REFUND")
	require.NoError(t, err)
	assert.Nil(t, preview.Resolution.Outcome)
	assert.Equal(t, "refund", preview.Resolution.Type)
	assert.Empty(t, preview.Losers)
}

func TestResolveMarketEncodesOutcome(t *testing.T) {
	var body map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	yes := true
	err := c.ResolveMarket(context.Background(), "m1", ResolveMarketRequest{
		Outcome: &yes,
		Type:    "standard",
		Notes:   "kaynak: resmi sonuç",
	})
	require.NoError(t, err)
	assert.Equal(t, true, body["outcome"])
	assert.Equal(t, "standard", body["resolutionType"])
}
