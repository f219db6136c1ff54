package treasury

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kahinlabs/kahinadmin/internal/querycache"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
)

type fakeAPI struct {
	overviewCalls int
	err           error
}

func (f *fakeAPI) Treasury(ctx context.Context) (upstream.TreasuryOverview, error) {
	f.overviewCalls++
	return upstream.TreasuryOverview{PlatformBalance: 1250000.75, LiquidityStatus: "healthy"}, f.err
}

func (f *fakeAPI) Liquidity(ctx context.Context) (upstream.LiquidityReport, error) {
	return upstream.LiquidityReport{Status: "healthy", Ratio: 1.8}, f.err
}

func (f *fakeAPI) NegativeBalances(ctx context.Context) ([]upstream.NegativeBalance, error) {
	return nil, f.err
}

func (f *fakeAPI) TopHolders(ctx context.Context) ([]upstream.TopHolder, error) {
	return []upstream.TopHolder{{UserID: "u-1", Username: "ayse", Balance: 98000}}, f.err
}

func setup(t *testing.T) (*fakeAPI, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &fakeAPI{}
	h := NewHandler(api, querycache.New(time.Minute))

	router := gin.New()
	router.GET("/console/treasury/overview", h.Overview)
	router.GET("/console/treasury/liquidity", h.Liquidity)
	router.GET("/console/treasury/negative-balances", h.NegativeBalances)
	router.GET("/console/treasury/top-holders", h.TopHolders)
	return api, router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestOverviewCached(t *testing.T) {
	api, router := setup(t)

	w := get(router, "/console/treasury/overview")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"liquidityStatus":"healthy"`)

	get(router, "/console/treasury/overview")
	assert.Equal(t, 1, api.overviewCalls)
}

func TestLiquidity(t *testing.T) {
	_, router := setup(t)

	w := get(router, "/console/treasury/liquidity")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ratio":1.8`)
}

func TestNegativeBalancesEmptyArrayNotNull(t *testing.T) {
	_, router := setup(t)

	w := get(router, "/console/treasury/negative-balances")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balances":[]`)
}

func TestTopHolders(t *testing.T) {
	_, router := setup(t)

	w := get(router, "/console/treasury/top-holders")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"ayse"`)
}

func TestOverviewUpstreamDown(t *testing.T) {
	api, router := setup(t)
	api.err = errors.New("connection refused")

	w := get(router, "/console/treasury/overview")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upstream_unreachable")
}
