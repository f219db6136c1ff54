package dashboard

import (
	"context"
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
	calls int
}

func (f *fakeAPI) Dashboard(ctx context.Context) (upstream.DashboardStats, error) {
	f.calls++
	return upstream.DashboardStats{
		ActiveMarkets:   42,
		TotalVolume:     1234567.89,
		PendingDeposits: 3,
	}, nil
}

func TestStatsCachedAndFormatted(t *testing.T) {
	gin.SetMode(gin.TestMode)

	api := &fakeAPI{}
	h := NewHandler(api, querycache.New(time.Minute))
	router := gin.New()
	router.GET("/console/dashboard", h.Stats)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/console/dashboard", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"activeMarkets":42`)
		assert.Contains(t, w.Body.String(), "1.234.567,89 TL")
	}
	assert.Equal(t, 1, api.calls)
}
