// Package markethealth implements the market health screen: liquidity
// flags from the backend's scoring plus pause and resume controls.
package markethealth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/audit"
	"github.com/kahinlabs/kahinadmin/internal/logging"
	"github.com/kahinlabs/kahinadmin/internal/metrics"
	"github.com/kahinlabs/kahinadmin/internal/querycache"
	"github.com/kahinlabs/kahinadmin/internal/session"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
	"github.com/kahinlabs/kahinadmin/internal/validation"
)

// API is the slice of the upstream client this screen uses.
type API interface {
	LowLiquidityMarkets(ctx context.Context) ([]upstream.MarketHealth, error)
	PausedMarkets(ctx context.Context) ([]upstream.Market, error)
	PauseMarket(ctx context.Context, id, reason string) error
	ResumeMarket(ctx context.Context, id string) error
}

// Handler serves the market health endpoints.
type Handler struct {
	api   API
	cache *querycache.Cache
	trail *audit.Trail
}

// NewHandler creates the market health HTTP handler.
func NewHandler(api API, cache *querycache.Cache, trail *audit.Trail) *Handler {
	return &Handler{api: api, cache: cache, trail: trail}
}

// LowLiquidity handles GET /console/market-health/low-liquidity
func (h *Handler) LowLiquidity(c *gin.Context) {
	ctx := c.Request.Context()

	var markets []upstream.MarketHealth
	err := h.cache.Get(ctx, querycache.ResLowLiquidityMarkets, &markets, func(ctx context.Context) (any, error) {
		return h.api.LowLiquidityMarkets(ctx)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	if markets == nil {
		markets = []upstream.MarketHealth{}
	}
	c.JSON(http.StatusOK, gin.H{"markets": markets})
}

// Paused handles GET /console/market-health/paused
func (h *Handler) Paused(c *gin.Context) {
	ctx := c.Request.Context()

	var markets []upstream.Market
	err := h.cache.Get(ctx, querycache.ResPausedMarkets, &markets, func(ctx context.Context) (any, error) {
		return h.api.PausedMarkets(ctx)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	if markets == nil {
		markets = []upstream.Market{}
	}
	c.JSON(http.StatusOK, gin.H{"markets": markets})
}

// Pause handles POST /console/market-health/:id/pause. A pause without
// a reason is rejected before any network traffic; the reason shows up
// on the user-facing market page.
func (h *Handler) Pause(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !validation.HasText(req.Reason) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Lütfen durdurma sebebi girin",
		})
		return
	}

	if err := h.api.PauseMarket(ctx, id, req.Reason); err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutMarketPause, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutMarketPause, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutMarketPause, id, "reason="+req.Reason)
	h.cache.InvalidateFor(ctx, querycache.MutMarketPause)
	logging.L(ctx).Info("market paused", "market", id)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Resume handles POST /console/market-health/:id/resume
func (h *Handler) Resume(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := h.api.ResumeMarket(ctx, id); err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutMarketResume, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutMarketResume, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutMarketResume, id, "")
	h.cache.InvalidateFor(ctx, querycache.MutMarketResume)
	logging.L(ctx).Info("market resumed", "market", id)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
