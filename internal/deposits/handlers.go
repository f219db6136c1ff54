// Package deposits implements the deposit verification screen: pending
// fiat deposits that an operator confirms or rejects against bank
// records, plus manual deposit entry.
package deposits

import (
	"context"
	"fmt"
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
	ListDeposits(ctx context.Context, f listing.Filters) (upstream.DepositPage, error)
	CreateDeposit(ctx context.Context, req upstream.CreateDepositRequest) (upstream.Deposit, error)
	VerifyDeposit(ctx context.Context, id, notes string) error
	RejectDeposit(ctx context.Context, id, notes string) error
}

// Handler serves the deposit endpoints.
type Handler struct {
	api   API
	cache *querycache.Cache
	trail *audit.Trail
	lists *listing.State
}

// NewHandler creates the deposits HTTP handler.
func NewHandler(api API, cache *querycache.Cache, trail *audit.Trail, lists *listing.State) *Handler {
	return &Handler{api: api, cache: cache, trail: trail, lists: lists}
}

// List handles GET /console/deposits
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	f := h.lists.Resolve("deposits", listing.FromQuery(c))
	key := querycache.Key(querycache.ResDeposits, f.KeyParts()...)

	var page upstream.DepositPage
	err := h.cache.Get(ctx, key, &page, func(ctx context.Context) (any, error) {
		return h.api.ListDeposits(ctx, f)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deposits": annotate(page.Deposits),
		"meta":     listing.Meta(f.Page, page.TotalPages),
	})
}

// depositView adds the fixed display fields the review table renders from.
type depositView struct {
	upstream.Deposit
	StatusLabel string `json:"statusLabel"`
	StatusColor string `json:"statusColor"`
}

func annotate(ds []upstream.Deposit) []depositView {
	out := make([]depositView, len(ds))
	for i, d := range ds {
		out[i] = depositView{
			Deposit:     d,
			StatusLabel: display.PaymentStatusLabel(d.Status),
			StatusColor: display.PaymentStatusColor(d.Status),
		}
	}
	return out
}

// Create handles POST /console/deposits, the manual entry form used
// when a user paid through a channel the backend cannot see.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req upstream.CreateDepositRequest
	err := c.ShouldBindJSON(&req)
	errs := validation.Validate(validation.Required("userId", req.UserID))
	if err != nil || len(errs) > 0 || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "User ID and Amount are required",
		})
		return
	}

	deposit, err := h.api.CreateDeposit(ctx, req)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutDepositCreate, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutDepositCreate, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutDepositCreate, deposit.ID,
		fmt.Sprintf("user=%s amount=%.2f", req.UserID, req.Amount))
	h.cache.InvalidateFor(ctx, querycache.MutDepositCreate)
	logging.L(ctx).Info("manual deposit recorded", "deposit", deposit.ID, "user", req.UserID)

	c.JSON(http.StatusCreated, gin.H{"deposit": deposit})
}

// Verify handles POST /console/deposits/:id/verify
func (h *Handler) Verify(c *gin.Context) {
	h.review(c, querycache.MutDepositVerify, h.api.VerifyDeposit)
}

// Reject handles POST /console/deposits/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	h.review(c, querycache.MutDepositReject, h.api.RejectDeposit)
}

// review is the shared verify/reject path. Both require notes: the
// notes are the paper trail tying the decision to a bank record.
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
	logging.L(ctx).Info("deposit reviewed", "deposit", id, "mutation", mutation)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
