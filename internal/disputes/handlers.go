// Package disputes implements the dispute review screen: user
// objections to market resolutions, moved through a review workflow
// with priorities.
package disputes

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
	ListDisputes(ctx context.Context, f listing.Filters) (upstream.DisputePage, error)
	DisputeStatistics(ctx context.Context) (upstream.DisputeStats, error)
	UpdateDisputeStatus(ctx context.Context, id string, req upstream.UpdateDisputeStatusRequest) error
	UpdateDisputePriority(ctx context.Context, id, priority string) error
}

// Handler serves the dispute endpoints.
type Handler struct {
	api   API
	cache *querycache.Cache
	trail *audit.Trail
	lists *listing.State
}

// NewHandler creates the disputes HTTP handler.
func NewHandler(api API, cache *querycache.Cache, trail *audit.Trail, lists *listing.State) *Handler {
	return &Handler{api: api, cache: cache, trail: trail, lists: lists}
}

// List handles GET /console/disputes
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	f := h.lists.Resolve("disputes", listing.FromQuery(c))
	key := querycache.Key(querycache.ResDisputes, f.KeyParts()...)

	var page upstream.DisputePage
	err := h.cache.Get(ctx, key, &page, func(ctx context.Context) (any, error) {
		return h.api.ListDisputes(ctx, f)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"disputes": annotate(page.Disputes),
		"meta":     listing.Meta(f.Page, page.TotalPages),
	})
}

// disputeView adds the fixed display fields the review table renders from.
type disputeView struct {
	upstream.Dispute
	StatusLabel   string `json:"statusLabel"`
	StatusColor   string `json:"statusColor"`
	PriorityLabel string `json:"priorityLabel"`
	PriorityColor string `json:"priorityColor"`
}

func annotate(ds []upstream.Dispute) []disputeView {
	out := make([]disputeView, len(ds))
	for i, d := range ds {
		out[i] = disputeView{
			Dispute:       d,
			StatusLabel:   display.DisputeStatusLabel(d.Status),
			StatusColor:   display.DisputeStatusColor(d.Status),
			PriorityLabel: display.PriorityLabel(d.Priority),
			PriorityColor: display.PriorityColor(d.Priority),
		}
	}
	return out
}

// Stats handles GET /console/disputes/stats
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	var stats upstream.DisputeStats
	err := h.cache.Get(ctx, querycache.ResDisputeStats, &stats, func(ctx context.Context) (any, error) {
		return h.api.DisputeStatistics(ctx)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// decidedStatuses are terminal review states that need written
// justification.
var decidedStatuses = map[string]bool{
	"approved": true,
	"rejected": true,
	"resolved": true,
}

// UpdateStatus handles PATCH /console/disputes/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req upstream.UpdateDisputeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Geçerli bir durum seçin",
		})
		return
	}
	if decidedStatuses[req.Status] && !validation.HasText(req.ReviewNotes) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Please provide review notes",
		})
		return
	}

	if err := h.api.UpdateDisputeStatus(ctx, id, req); err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutDisputeStatus, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutDisputeStatus, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutDisputeStatus, id, "status="+req.Status)
	h.cache.InvalidateFor(ctx, querycache.MutDisputeStatus)
	logging.L(ctx).Info("dispute status updated", "dispute", id, "status", req.Status)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

var validPriorities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
	"urgent": true,
}

// UpdatePriority handles PATCH /console/disputes/:id/priority
func (h *Handler) UpdatePriority(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req struct {
		Priority string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !validPriorities[req.Priority] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Geçerli bir öncelik seçin",
		})
		return
	}

	if err := h.api.UpdateDisputePriority(ctx, id, req.Priority); err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutDisputePriority, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutDisputePriority, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutDisputePriority, id, "priority="+req.Priority)
	h.cache.InvalidateFor(ctx, querycache.MutDisputePriority)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
