// Package dashboard implements the landing screen's aggregate cards.
package dashboard

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/display"
	"github.com/kahinlabs/kahinadmin/internal/querycache"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
)

// API is the slice of the upstream client this screen uses.
type API interface {
	Dashboard(ctx context.Context) (upstream.DashboardStats, error)
}

// Handler serves the dashboard endpoint.
type Handler struct {
	api   API
	cache *querycache.Cache
}

// NewHandler creates the dashboard HTTP handler.
func NewHandler(api API, cache *querycache.Cache) *Handler {
	return &Handler{api: api, cache: cache}
}

// Stats handles GET /console/dashboard
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	var stats upstream.DashboardStats
	err := h.cache.Get(ctx, querycache.ResAdminDashboard, &stats, func(ctx context.Context) (any, error) {
		return h.api.Dashboard(ctx)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":       stats,
		"totalVolume": display.FormatTL(stats.TotalVolume),
	})
}
