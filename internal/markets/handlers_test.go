package markets

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
	listCalls   int
	createCalls int
	closeCalls  int
	created     upstream.CreateMarketRequest
	err         error
}

func (f *fakeAPI) ListMarkets(ctx context.Context, fl listing.Filters) (upstream.MarketPage, error) {
	f.listCalls++
	if f.err != nil {
		return upstream.MarketPage{}, f.err
	}
	return upstream.MarketPage{
		Markets:    []upstream.Market{{ID: "m-1", Title: "Dolar 50 TL olacak mı?", Status: "open"}},
		Total:      1,
		TotalPages: 3,
	}, nil
}

func (f *fakeAPI) CreateMarket(ctx context.Context, req upstream.CreateMarketRequest) (upstream.Market, error) {
	f.createCalls++
	f.created = req
	if f.err != nil {
		return upstream.Market{}, f.err
	}
	return upstream.Market{ID: "m-new", Title: req.Title}, nil
}

func (f *fakeAPI) UpdateMarket(ctx context.Context, id string, req upstream.UpdateMarketRequest) (upstream.Market, error) {
	if f.err != nil {
		return upstream.Market{}, f.err
	}
	return upstream.Market{ID: id, Title: req.Title}, nil
}

func (f *fakeAPI) DeleteMarket(ctx context.Context, id string) error { return f.err }

func (f *fakeAPI) CloseMarket(ctx context.Context, id string) error {
	f.closeCalls++
	return f.err
}

func setup(t *testing.T) (*fakeAPI, *querycache.Cache, *audit.Trail, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &fakeAPI{}
	cache := querycache.New(time.Minute)
	trail := audit.NewTrail(audit.NewMemoryStore(), nil)
	h := NewHandler(api, cache, trail, listing.NewState())

	router := gin.New()
	router.GET("/console/markets", h.List)
	router.POST("/console/markets", h.Create)
	router.PUT("/console/markets/:id", h.Update)
	router.DELETE("/console/markets/:id", h.Delete)
	router.POST("/console/markets/:id/close", h.Close)
	return api, cache, trail, router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestListCachesResults(t *testing.T) {
	api, _, _, router := setup(t)

	w := get(router, "/console/markets?status=open")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dolar 50 TL olacak mı?")
	assert.Contains(t, w.Body.String(), `"statusLabel":"Açık"`)
	assert.Contains(t, w.Body.String(), `"hasNext":true`)

	get(router, "/console/markets?status=open")
	assert.Equal(t, 1, api.listCalls, "repeat read must come from cache")
}

func TestListFilterChangeResetsPage(t *testing.T) {
	api, _, _, router := setup(t)

	get(router, "/console/markets?status=open&page=3")
	w := get(router, "/console/markets?status=closed&page=3")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"page":1`, "status change must reset pagination")
	assert.Equal(t, 2, api.listCalls)
}

func TestCreateRequiresTitleAndClosingDate(t *testing.T) {
	api, _, _, router := setup(t)

	for _, body := range []string{
		`{"closingDate":"2026-09-01"}`,
		`{"title":"   ","closingDate":"2026-09-01"}`,
		`{"title":"Test piyasası"}`,
	} {
		w := do(router, http.MethodPost, "/console/markets", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "Başlık ve kapanış tarihi zorunludur")
	}
	assert.Zero(t, api.createCalls, "validation failures must not reach the backend")
}

func TestCreateRejectsOverlongDescription(t *testing.T) {
	api, _, _, router := setup(t)

	long := strings.Repeat("a", 10001)
	w := do(router, http.MethodPost, "/console/markets",
		`{"title":"Test","closingDate":"2026-09-01","description":"`+long+`"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Açıklama çok uzun")
	assert.Zero(t, api.createCalls)
}

func TestCreateMultipleChoiceNeedsTwoOptions(t *testing.T) {
	api, _, _, router := setup(t)

	w := do(router, http.MethodPost, "/console/markets",
		`{"title":"Seçim","closingDate":"2026-09-01","marketType":"multiple_choice","options":["A","  "]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "En az 2 seçenek gereklidir")
	assert.Zero(t, api.createCalls)
}

func TestCreateSuccessAuditsAndInvalidates(t *testing.T) {
	api, cache, trail, router := setup(t)
	ctx := context.Background()

	// Warm the markets cache so we can observe the invalidation.
	get(router, "/console/markets")
	require.Equal(t, 1, cache.Len())

	w := do(router, http.MethodPost, "/console/markets",
		`{"title":"Yeni piyasa","closingDate":"2026-09-01","marketType":"binary"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, "Yeni piyasa", api.created.Title)
	assert.Equal(t, 0, cache.Len(), "market list cache must be staled")

	entries, err := trail.List(ctx, "market.create", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "m-new", entries[0].TargetID)
}

func TestCloseMarket(t *testing.T) {
	api, cache, trail, router := setup(t)

	get(router, "/console/markets")
	w := do(router, http.MethodPost, "/console/markets/m-1/close", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, api.closeCalls)
	assert.Equal(t, 0, cache.Len())

	entries, err := trail.List(context.Background(), "market.close", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "m-1", entries[0].TargetID)
}

func TestCloseErrorPassesBackendMessageThrough(t *testing.T) {
	api, _, _, router := setup(t)
	api.err = &upstream.APIError{Status: 409, Code: "market_not_open", Message: "Piyasa zaten kapalı"}

	w := do(router, http.MethodPost, "/console/markets/m-1/close", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Piyasa zaten kapalı")
}

func TestDeleteMarket(t *testing.T) {
	_, _, trail, router := setup(t)

	w := do(router, http.MethodDelete, "/console/markets/m-9", "")
	assert.Equal(t, http.StatusOK, w.Code)

	entries, err := trail.List(context.Background(), "market.delete", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
