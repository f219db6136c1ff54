// Package withdrawals implements the withdrawal approval screen.
// Unlike deposits there is no manual entry; withdrawals originate from
// users and the operator only approves or rejects them.
package withdrawals

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
	ListWithdrawals(ctx context.Context, f listing.Filters) (upstream.WithdrawalPage, error)
	ApproveWithdrawal(ctx context.Context, id, notes string) error
	RejectWithdrawal(ctx context.Context, id, notes string) error
}

// Handler serves the withdrawal endpoints.
type Handler struct {
	api   API
	cache *querycache.Cache
	trail *audit.Trail
	lists *listing.State
}

// NewHandler creates the withdrawals HTTP handler.
func NewHandler(api API, cache *querycache.Cache, trail *audit.Trail, lists *listing.State) *Handler {
	return &Handler{api: api, cache: cache, trail: trail, lists: lists}
}

// List handles GET /console/withdrawals
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	f := h.lists.Resolve("withdrawals", listing.FromQuery(c))
	key := querycache.Key(querycache.ResWithdrawals, f.KeyParts()...)

	var page upstream.WithdrawalPage
	err := h.cache.Get(ctx, key, &page, func(ctx context.Context) (any, error) {
		return h.api.ListWithdrawals(ctx, f)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"withdrawals": annotate(page.Withdrawals),
		"meta":        listing.Meta(f.Page, page.TotalPages),
	})
}

// withdrawalView adds the fixed display fields the review table renders from.
type withdrawalView struct {
	upstream.Withdrawal
	StatusLabel string `json:"statusLabel"`
	StatusColor string `json:"statusColor"`
}

func annotate(ws []upstream.Withdrawal) []withdrawalView {
	out := make([]withdrawalView, len(ws))
	for i, w := range ws {
		out[i] = withdrawalView{
			Withdrawal:  w,
			StatusLabel: display.PaymentStatusLabel(w.Status),
			StatusColor: display.PaymentStatusColor(w.Status),
		}
	}
	return out
}

// Approve handles POST /console/withdrawals/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	h.review(c, querycache.MutWithdrawalApprove, h.api.ApproveWithdrawal)
}

// Reject handles POST /console/withdrawals/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	h.review(c, querycache.MutWithdrawalReject, h.api.RejectWithdrawal)
}

func (h *Handler) review(c *gin.Context, mutation string, call func(ctx context.Context, id, notes string) error) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !validation.HasText(req.Notes) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Please provide review notes",
		})
		return
	}

	if err := call(ctx, id, req.Notes); err != nil {
		metrics.MutationsTotal.WithLabelValues(mutation, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(mutation, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), mutation, id, "notes="+req.Notes)
	h.cache.InvalidateFor(ctx, mutation)
	logging.L(ctx).Info("withdrawal reviewed", "withdrawal", id, "mutation", mutation)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
