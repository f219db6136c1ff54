// Package metrics provides Prometheus instrumentation for the admin console.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kahinadmin",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kahinadmin",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// UpstreamRequestsTotal counts calls to the platform backend by resource and outcome.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kahinadmin",
			Name:      "upstream_requests_total",
			Help:      "Total upstream API calls by resource and outcome.",
		},
		[]string{"resource", "outcome"},
	)

	// UpstreamRequestDuration observes upstream call latency by resource.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kahinadmin",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	// CacheHitsTotal counts query cache hits by resource key.
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kahinadmin",
			Name:      "cache_hits_total",
			Help:      "Total query cache hits by resource key.",
		},
		[]string{"resource"},
	)

	// CacheMissesTotal counts query cache misses by resource key.
	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kahinadmin",
			Name:      "cache_misses_total",
			Help:      "Total query cache misses by resource key.",
		},
		[]string{"resource"},
	)

	// CacheInvalidationsTotal counts invalidated cache keys by mutation.
	CacheInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kahinadmin",
			Name:      "cache_invalidations_total",
			Help:      "Total cache key invalidations by mutation.",
		},
		[]string{"mutation"},
	)

	// MutationsTotal counts console mutations by action and result.
	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kahinadmin",
			Name:      "mutations_total",
			Help:      "Total console mutations by action and result.",
		},
		[]string{"action", "result"},
	)

	// SessionAuthenticated tracks whether the operator session is authenticated (1/0).
	SessionAuthenticated = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kahinadmin",
			Name:      "session_authenticated",
			Help:      "1 when the operator session is authenticated, 0 otherwise.",
		},
	)

	// ActiveWebSocketClients tracks connected WebSocket clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kahinadmin",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected WebSocket clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheInvalidationsTotal,
		MutationsTotal,
		SessionAuthenticated,
		ActiveWebSocketClients,
	)
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
