// Package users implements the user management screen: account search,
// balance history, manual balance corrections, freezes, and role
// changes.
package users

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/audit"
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
	ListUsers(ctx context.Context, f listing.Filters) (upstream.UserPage, error)
	BalanceHistory(ctx context.Context, userID string, f listing.Filters) (upstream.BalanceHistoryPage, error)
	AdjustBalance(ctx context.Context, userID string, req upstream.AdjustBalanceRequest) error
	FreezeBalance(ctx context.Context, userID, reason string) error
	UnfreezeBalance(ctx context.Context, userID, reason string) error
	PromoteUser(ctx context.Context, userID string) error
	DemoteUser(ctx context.Context, userID string) error
}

// Handler serves the user management endpoints.
type Handler struct {
	api   API
	cache *querycache.Cache
	trail *audit.Trail
	lists *listing.State
}

// NewHandler creates the users HTTP handler.
func NewHandler(api API, cache *querycache.Cache, trail *audit.Trail, lists *listing.State) *Handler {
	return &Handler{api: api, cache: cache, trail: trail, lists: lists}
}

// List handles GET /console/users
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	f := h.lists.Resolve("users", listing.FromQuery(c))
	key := querycache.Key(querycache.ResAdminUsers, f.KeyParts()...)

	var page upstream.UserPage
	err := h.cache.Get(ctx, key, &page, func(ctx context.Context) (any, error) {
		return h.api.ListUsers(ctx, f)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": page.Users,
		"meta":  listing.Meta(f.Page, page.TotalPages),
	})
}

// BalanceHistory handles GET /console/users/:id/balance-history
func (h *Handler) BalanceHistory(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	f := listing.FromQuery(c)
	key := querycache.Key(querycache.ResUserBalanceHistory, append([]string{"user=" + id}, f.KeyParts()...)...)

	var page upstream.BalanceHistoryPage
	err := h.cache.Get(ctx, key, &page, func(ctx context.Context) (any, error) {
		return h.api.BalanceHistory(ctx, id, f)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": page.Entries,
		"meta":    listing.Meta(f.Page, page.TotalPages),
	})
}

// AdjustBalance handles POST /console/users/:id/balance/adjust. The
// amount is signed; a negative value debits the account. Zero is
// meaningless and rejected.
func (h *Handler) AdjustBalance(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req struct {
		Amount float64 `json:"amount"`
		Reason string  `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount == 0 {
		badRequest(c, "Geçerli bir miktar girin")
		return
	}
	if !validation.HasText(req.Reason) {
		badRequest(c, "Lütfen bir sebep belirtin")
		return
	}

	err := h.api.AdjustBalance(ctx, id, upstream.AdjustBalanceRequest{Amount: req.Amount, Reason: req.Reason})
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutUserBalanceAdjust, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutUserBalanceAdjust, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutUserBalanceAdjust, id,
		fmt.Sprintf("amount=%.2f reason=%s", req.Amount, req.Reason))
	h.cache.InvalidateFor(ctx, querycache.MutUserBalanceAdjust)
	logging.L(ctx).Info("balance adjusted", "user", id, "amount", req.Amount)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Freeze handles POST /console/users/:id/balance/freeze
func (h *Handler) Freeze(c *gin.Context) {
	h.freezeOp(c, querycache.MutUserBalanceFreeze, h.api.FreezeBalance)
}

// Unfreeze handles POST /console/users/:id/balance/unfreeze
func (h *Handler) Unfreeze(c *gin.Context) {
	h.freezeOp(c, querycache.MutUserBalanceUnfreeze, h.api.UnfreezeBalance)
}

func (h *Handler) freezeOp(c *gin.Context, mutation string, call func(ctx context.Context, userID, reason string) error) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !validation.HasText(req.Reason) {
		badRequest(c, "Lütfen bir sebep belirtin")
		return
	}

	if err := call(ctx, id, req.Reason); err != nil {
		metrics.MutationsTotal.WithLabelValues(mutation, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(mutation, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), mutation, id, "reason="+req.Reason)
	h.cache.InvalidateFor(ctx, mutation)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Promote handles POST /console/users/:id/promote
func (h *Handler) Promote(c *gin.Context) {
	h.roleOp(c, querycache.MutUserPromote, h.api.PromoteUser)
}

// Demote handles POST /console/users/:id/demote. Demoting the operator
// themselves is allowed; the next guard check will log them out.
func (h *Handler) Demote(c *gin.Context) {
	h.roleOp(c, querycache.MutUserDemote, h.api.DemoteUser)
}

func (h *Handler) roleOp(c *gin.Context, mutation string, call func(ctx context.Context, userID string) error) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := call(ctx, id); err != nil {
		metrics.MutationsTotal.WithLabelValues(mutation, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(mutation, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), mutation, id, "")
	h.cache.InvalidateFor(ctx, mutation)
	logging.L(ctx).Info("user role changed", "user", id, "mutation", mutation)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": message,
	})
}
