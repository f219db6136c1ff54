// Package treasury implements the treasury screen. Everything here is
// read-only: the numbers are computed by the backend and the console
// only caches and displays them.
package treasury

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/querycache"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
)

// API is the slice of the upstream client this screen uses.
type API interface {
	Treasury(ctx context.Context) (upstream.TreasuryOverview, error)
	Liquidity(ctx context.Context) (upstream.LiquidityReport, error)
	NegativeBalances(ctx context.Context) ([]upstream.NegativeBalance, error)
	TopHolders(ctx context.Context) ([]upstream.TopHolder, error)
}

// Handler serves the treasury endpoints.
type Handler struct {
	api   API
	cache *querycache.Cache
}

// NewHandler creates the treasury HTTP handler.
func NewHandler(api API, cache *querycache.Cache) *Handler {
	return &Handler{api: api, cache: cache}
}

// Overview handles GET /console/treasury/overview
func (h *Handler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	var overview upstream.TreasuryOverview
	err := h.cache.Get(ctx, querycache.ResTreasury, &overview, func(ctx context.Context) (any, error) {
		return h.api.Treasury(ctx)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"overview": overview})
}

// Liquidity handles GET /console/treasury/liquidity
func (h *Handler) Liquidity(c *gin.Context) {
	ctx := c.Request.Context()

	var report upstream.LiquidityReport
	err := h.cache.Get(ctx, querycache.ResLiquidity, &report, func(ctx context.Context) (any, error) {
		return h.api.Liquidity(ctx)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liquidity": report})
}

// NegativeBalances handles GET /console/treasury/negative-balances
func (h *Handler) NegativeBalances(c *gin.Context) {
	ctx := c.Request.Context()

	var balances []upstream.NegativeBalance
	err := h.cache.Get(ctx, querycache.ResNegativeBalances, &balances, func(ctx context.Context) (any, error) {
		return h.api.NegativeBalances(ctx)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	if balances == nil {
		balances = []upstream.NegativeBalance{}
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// TopHolders handles GET /console/treasury/top-holders
func (h *Handler) TopHolders(c *gin.Context) {
	ctx := c.Request.Context()

	var holders []upstream.TopHolder
	err := h.cache.Get(ctx, querycache.ResTopHolders, &holders, func(ctx context.Context) (any, error) {
		return h.api.TopHolders(ctx)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	if holders == nil {
		holders = []upstream.TopHolder{}
	}
	c.JSON(http.StatusOK, gin.H{"holders": holders})
}
