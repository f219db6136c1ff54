package resolution

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahinlabs/kahinadmin/internal/audit"
	"github.com/kahinlabs/kahinadmin/internal/listing"
	"github.com/kahinlabs/kahinadmin/internal/querycache"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
)

type fakeAPI struct {
	previewCalls int
	resolveCalls int
	resolved     upstream.ResolveMarketRequest
	resolveErr   error
	previewErr   error
}

func (f *fakeAPI) ListMarkets(ctx context.Context, fl listing.Filters) (upstream.MarketPage, error) {
	return upstream.MarketPage{Markets: []upstream.Market{{ID: "m-1", Status: "closed"}}}, nil
}

func (f *fakeAPI) ResolutionPreview(ctx context.Context, id, outcome string) (upstream.ResolutionPreview, error) {
	f.previewCalls++
	if f.previewErr != nil {
		return upstream.ResolutionPreview{}, f.previewErr
	}

	var p upstream.ResolutionPreview
	p.Market = upstream.Market{ID: id, Status: "closed"}
	switch outcome {
	case OutcomeYes:
		v := true
		p.Resolution.Outcome = &v
		p.Resolution.Type = "standard"
		p.Winners = []upstream.PayoutRow{{UserID: "u-1", Payout: 120}}
		p.Losers = []upstream.PayoutRow{{UserID: "u-2"}}
	case OutcomeNo:
		v := false
		p.Resolution.Outcome = &v
		p.Resolution.Type = "standard"
	case OutcomeRefund:
		p.Resolution.Outcome = nil
		p.Resolution.Type = "refund"
		// A refund has no losing side.
		p.Winners = []upstream.PayoutRow{{UserID: "u-1", Payout: 50}, {UserID: "u-2", Payout: 70}}
		p.Losers = nil
	}
	p.Impact.TotalHolders = 2
	return p, nil
}

func (f *fakeAPI) ResolveMarket(ctx context.Context, id string, req upstream.ResolveMarketRequest) error {
	f.resolveCalls++
	f.resolved = req
	return f.resolveErr
}

func (f *fakeAPI) ScheduleResolution(ctx context.Context, id string, req upstream.ScheduleResolutionRequest) error {
	return nil
}

func (f *fakeAPI) ScheduledResolutions(ctx context.Context) ([]upstream.ScheduledResolution, error) {
	return []upstream.ScheduledResolution{{ID: "sr-1", MarketID: "m-2", Outcome: OutcomeYes}}, nil
}

func setup(t *testing.T) (*fakeAPI, *querycache.Cache, *audit.Trail, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &fakeAPI{}
	cache := querycache.New(time.Minute)
	trail := audit.NewTrail(audit.NewMemoryStore(), nil)
	h := NewHandler(api, cache, trail)

	router := gin.New()
	router.GET("/console/resolution/markets", h.List)
	router.GET("/console/resolution/scheduled", h.Scheduled)
	router.POST("/console/resolution/:id/preview", h.Preview)
	router.POST("/console/resolution/:id/resolve", h.Submit)
	router.POST("/console/resolution/:id/schedule", h.Schedule)
	return api, cache, trail, router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitWithoutPreviewRejected(t *testing.T) {
	api, _, _, router := setup(t)

	w := post(router, "/console/resolution/m-1/resolve", `{"outcome":"yes"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "preview_required")
	assert.Zero(t, api.resolveCalls)
}

func TestPreviewThenSubmitYes(t *testing.T) {
	api, _, trail, router := setup(t)

	w := post(router, "/console/resolution/m-1/preview", `{"outcome":"yes"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"flowPhase":"previewed"`)

	w = post(router, "/console/resolution/m-1/resolve", `{"outcome":"yes","notes":"kesin sonuç"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, 1, api.resolveCalls)
	require.NotNil(t, api.resolved.Outcome)
	assert.True(t, *api.resolved.Outcome)
	assert.Equal(t, "standard", api.resolved.Type)
	assert.Equal(t, "kesin sonuç", api.resolved.Notes)

	entries, err := trail.List(context.Background(), "market.resolve", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "outcome=yes", entries[0].Detail)
}

func TestSubmitRefundEncodesNullOutcome(t *testing.T) {
	api, _, _, router := setup(t)

	post(router, "/console/resolution/m-1/preview", `{"outcome":"refund"}`)
	w := post(router, "/console/resolution/m-1/resolve", `{"outcome":"refund"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, api.resolved.Outcome)
	assert.Equal(t, "refund", api.resolved.Type)
}

func TestSubmitOutcomeMismatchRejected(t *testing.T) {
	api, _, _, router := setup(t)

	post(router, "/console/resolution/m-1/preview", `{"outcome":"yes"}`)
	w := post(router, "/console/resolution/m-1/resolve", `{"outcome":"no"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "outcome_mismatch")
	assert.Zero(t, api.resolveCalls)
}

func TestSubmitInvalidOutcomeRejected(t *testing.T) {
	api, _, _, router := setup(t)

	w := post(router, "/console/resolution/m-1/resolve", `{"outcome":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Geçerli bir sonuç seçin")
	assert.Zero(t, api.resolveCalls)
}

func TestFailedSubmitAllowsRetryWithoutNewPreview(t *testing.T) {
	api, cache, _, router := setup(t)
	api.resolveErr = &upstream.APIError{Status: 502, Code: "payout_engine_down", Message: "Ödeme motoru yanıt vermiyor"}

	post(router, "/console/resolution/m-1/preview", `{"outcome":"yes"}`)

	w := post(router, "/console/resolution/m-1/resolve", `{"outcome":"yes"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Ödeme motoru yanıt vermiyor")
	assert.Equal(t, 0, cache.Len(), "failed resolution must not invalidate anything it did not change")

	api.resolveErr = nil
	w = post(router, "/console/resolution/m-1/resolve", `{"outcome":"yes"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, api.resolveCalls)
}

func TestSuccessfulSubmitInvalidatesResolutionCaches(t *testing.T) {
	_, cache, _, router := setup(t)

	// Warm both lists this screen renders.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/console/resolution/markets", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/console/resolution/scheduled", nil))
	require.Equal(t, 2, cache.Len())

	post(router, "/console/resolution/m-1/preview", `{"outcome":"no"}`)
	resp := post(router, "/console/resolution/m-1/resolve", `{"outcome":"no"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, 0, cache.Len())
}

func TestListAnnotatesFlowPhase(t *testing.T) {
	_, _, _, router := setup(t)

	post(router, "/console/resolution/m-1/preview", `{"outcome":"yes"}`)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/console/resolution/markets", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"flowPhase":"previewed"`)
}

func TestScheduleRequiresOutcomeAndDate(t *testing.T) {
	_, _, trail, router := setup(t)

	w := post(router, "/console/resolution/m-2/schedule", `{"outcome":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Sonuç ve zamanlama tarihi zorunludur")

	w = post(router, "/console/resolution/m-2/schedule", `{"outcome":"yes","scheduledFor":"2026-09-15T18:00:00Z"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	entries, err := trail.List(context.Background(), "market.scheduleResolution", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
