// Package markets implements the market management screen: listing,
// creation, edits, deletion, and closing markets for trading.
package markets

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/audit"
	"github.com/kahinlabs/kahinadmin/internal/display"
	"github.com/kahinlabs/kahinadmin/internal/listing"
	"github.com/kahinlabs/kahinadmin/internal/logging"
	"github.com/kahinlabs/kahinadmin/internal/metrics"
	"github.com/kahinlabs/kahinadmin/internal/querycache"
	"github.com/kahinlabs/kahinadmin/internal/session"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
	"github.com/kahinlabs/kahinadmin/internal/validation"
)

// API is the slice of the upstream client this screen uses.
type API interface {
	ListMarkets(ctx context.Context, f listing.Filters) (upstream.MarketPage, error)
	CreateMarket(ctx context.Context, req upstream.CreateMarketRequest) (upstream.Market, error)
	UpdateMarket(ctx context.Context, id string, req upstream.UpdateMarketRequest) (upstream.Market, error)
	DeleteMarket(ctx context.Context, id string) error
	CloseMarket(ctx context.Context, id string) error
}

// Handler serves the market management endpoints.
type Handler struct {
	api   API
	cache *querycache.Cache
	trail *audit.Trail
	lists *listing.State
}

// NewHandler creates the markets HTTP handler.
func NewHandler(api API, cache *querycache.Cache, trail *audit.Trail, lists *listing.State) *Handler {
	return &Handler{api: api, cache: cache, trail: trail, lists: lists}
}

// List handles GET /console/markets
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	f := h.lists.Resolve("markets", listing.FromQuery(c))
	key := querycache.Key(querycache.ResAdminMarkets, f.KeyParts()...)

	var page upstream.MarketPage
	err := h.cache.Get(ctx, key, &page, func(ctx context.Context) (any, error) {
		return h.api.ListMarkets(ctx, f)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"markets": annotate(page.Markets),
		"meta":    listing.Meta(f.Page, page.TotalPages),
	})
}

// marketView adds the fixed display fields the table renders from.
type marketView struct {
	upstream.Market
	StatusLabel string `json:"statusLabel"`
	StatusColor string `json:"statusColor"`
}

func annotate(ms []upstream.Market) []marketView {
	out := make([]marketView, len(ms))
	for i, m := range ms {
		out[i] = marketView{
			Market:      m,
			StatusLabel: display.MarketStatusLabel(m.Status),
			StatusColor: display.MarketStatusColor(m.Status),
		}
	}
	return out
}

// Create handles POST /console/markets
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req upstream.CreateMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Başlık ve kapanış tarihi zorunludur")
		return
	}

	// Form rules are checked here, before any network traffic.
	req.Title = validation.SanitizeString(req.Title, validation.MaxStringLength)
	if errs := validation.Validate(
		validation.Required("title", req.Title),
		validation.Required("closingDate", req.ClosingDate),
	); len(errs) > 0 {
		badRequest(c, "Başlık ve kapanış tarihi zorunludur")
		return
	}
	if errs := validation.Validate(
		validation.MaxLength("description", req.Description, validation.MaxStringLength),
	); len(errs) > 0 {
		badRequest(c, "Açıklama çok uzun")
		return
	}
	if req.MarketType == "multiple_choice" && validation.NonEmptyCount(req.Options) < 2 {
		badRequest(c, "En az 2 seçenek gereklidir")
		return
	}

	market, err := h.api.CreateMarket(ctx, req)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutMarketCreate, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutMarketCreate, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutMarketCreate, market.ID, "title="+req.Title)
	h.cache.InvalidateFor(ctx, querycache.MutMarketCreate)
	logging.L(ctx).Info("market created", "market", market.ID)

	c.JSON(http.StatusCreated, gin.H{"market": market})
}

// Update handles PUT /console/markets/:id
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req upstream.UpdateMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Geçersiz istek gövdesi")
		return
	}

	market, err := h.api.UpdateMarket(ctx, id, req)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutMarketUpdate, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutMarketUpdate, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutMarketUpdate, id, "")
	h.cache.InvalidateFor(ctx, querycache.MutMarketUpdate)

	c.JSON(http.StatusOK, gin.H{"market": market})
}

// Delete handles DELETE /console/markets/:id
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := h.api.DeleteMarket(ctx, id); err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutMarketDelete, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutMarketDelete, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutMarketDelete, id, "")
	h.cache.InvalidateFor(ctx, querycache.MutMarketDelete)
	logging.L(ctx).Info("market deleted", "market", id)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Close handles POST /console/markets/:id/close
func (h *Handler) Close(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := h.api.CloseMarket(ctx, id); err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutMarketClose, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutMarketClose, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutMarketClose, id, "")
	h.cache.InvalidateFor(ctx, querycache.MutMarketClose)
	logging.L(ctx).Info("market closed", "market", id)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": message,
	})
}
