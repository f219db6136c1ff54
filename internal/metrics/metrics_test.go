package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusBucket(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{204, "2xx"},
		{303, "3xx"},
		{401, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusBucket(tt.code))
	}
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Middleware())
	router.GET("/console/markets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	before := counterValue(t, "GET", "/console/markets", "2xx")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/console/markets", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	after := counterValue(t, "GET", "/console/markets", "2xx")
	assert.Equal(t, before+1, after)
}

func counterValue(t *testing.T, method, path, status string) float64 {
	t.Helper()
	var m dto.Metric
	c, err := HTTPRequestsTotal.GetMetricWithLabelValues(method, path, status)
	require.NoError(t, err)
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
