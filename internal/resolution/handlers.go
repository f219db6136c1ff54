package resolution

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/audit"
	"github.com/kahinlabs/kahinadmin/internal/listing"
	"github.com/kahinlabs/kahinadmin/internal/logging"
	"github.com/kahinlabs/kahinadmin/internal/metrics"
	"github.com/kahinlabs/kahinadmin/internal/querycache"
	"github.com/kahinlabs/kahinadmin/internal/session"
	"github.com/kahinlabs/kahinadmin/internal/traces"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
	"github.com/kahinlabs/kahinadmin/internal/validation"
)

// Valid outcome values as sent by the resolution screen.
const (
	OutcomeYes    = "yes"
	OutcomeNo     = "no"
	OutcomeRefund = "refund"
)

// API is the slice of the upstream client this screen uses.
type API interface {
	ListMarkets(ctx context.Context, f listing.Filters) (upstream.MarketPage, error)
	ResolutionPreview(ctx context.Context, id, outcome string) (upstream.ResolutionPreview, error)
	ResolveMarket(ctx context.Context, id string, req upstream.ResolveMarketRequest) error
	ScheduleResolution(ctx context.Context, id string, req upstream.ScheduleResolutionRequest) error
	ScheduledResolutions(ctx context.Context) ([]upstream.ScheduledResolution, error)
}

// Handler serves the market resolution endpoints.
type Handler struct {
	api   API
	cache *querycache.Cache
	trail *audit.Trail
	flow  *Flow
}

// NewHandler creates the resolution HTTP handler.
func NewHandler(api API, cache *querycache.Cache, trail *audit.Trail) *Handler {
	return &Handler{api: api, cache: cache, trail: trail, flow: NewFlow()}
}

// List handles GET /console/resolution/markets: closed markets awaiting
// an outcome, each annotated with its flow phase.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var page upstream.MarketPage
	err := h.cache.Get(ctx, querycache.ResResolvableMarkets, &page, func(ctx context.Context) (any, error) {
		return h.api.ListMarkets(ctx, listing.Filters{Status: "closed", Page: 1})
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	type row struct {
		upstream.Market
		FlowPhase string `json:"flowPhase"`
	}
	rows := make([]row, 0, len(page.Markets))
	for _, m := range page.Markets {
		rows = append(rows, row{Market: m, FlowPhase: h.flow.Phase(m.ID)})
	}

	c.JSON(http.StatusOK, gin.H{"markets": rows})
}

// Preview handles POST /console/resolution/:id/preview. Repeating a
// preview is free; it never mutates backend state.
func (h *Handler) Preview(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req struct {
		Outcome string `json:"outcome"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !validOutcome(req.Outcome) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Geçerli bir sonuç seçin",
		})
		return
	}

	ctx, span := traces.StartSpan(ctx, "resolution.preview", traces.MarketID(id))
	defer span.End()

	preview, err := h.api.ResolutionPreview(ctx, id, req.Outcome)
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	h.flow.Previewed(id, req.Outcome)
	logging.L(ctx).Info("resolution previewed",
		"market", id,
		"outcome", req.Outcome,
		"holders", preview.Impact.TotalHolders,
		"payout", preview.Impact.TotalPayout)

	c.JSON(http.StatusOK, gin.H{
		"preview":   preview,
		"flowPhase": h.flow.Phase(id),
	})
}

// Submit handles POST /console/resolution/:id/resolve. The preview
// gate and the in-flight lock both live here; the backend call itself
// is never retried.
func (h *Handler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req struct {
		Outcome  string `json:"outcome"`
		Notes    string `json:"notes"`
		Evidence string `json:"evidence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !validOutcome(req.Outcome) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Geçerli bir sonuç seçin",
		})
		return
	}

	if err := h.flow.BeginSubmit(id, req.Outcome); err != nil {
		h.writeFlowError(c, err)
		return
	}

	ctx, span := traces.StartSpan(ctx, "resolution.submit",
		traces.MarketID(id), traces.Mutation(querycache.MutMarketResolve))
	defer span.End()

	err := h.api.ResolveMarket(ctx, id, resolveRequest(req.Outcome, req.Notes, req.Evidence, session.Actor(c)))
	if err != nil {
		h.flow.FailSubmit(id)
		metrics.MutationsTotal.WithLabelValues(querycache.MutMarketResolve, "error").Inc()
		logging.L(ctx).Error("market resolution failed", "market", id, "error", err)
		upstream.WriteError(c, err)
		return
	}

	h.flow.CompleteSubmit(id)
	metrics.MutationsTotal.WithLabelValues(querycache.MutMarketResolve, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutMarketResolve, id, "outcome="+req.Outcome)
	h.cache.InvalidateFor(ctx, querycache.MutMarketResolve)
	logging.L(ctx).Info("market resolved", "market", id, "outcome", req.Outcome)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Schedule handles POST /console/resolution/:id/schedule
func (h *Handler) Schedule(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req struct {
		Outcome      string `json:"outcome"`
		ScheduledFor string `json:"scheduledFor"`
		Notes        string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !validOutcome(req.Outcome) || !validation.HasText(req.ScheduledFor) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Sonuç ve zamanlama tarihi zorunludur",
		})
		return
	}

	err := h.api.ScheduleResolution(ctx, id, upstream.ScheduleResolutionRequest{
		Outcome:      req.Outcome,
		ScheduledFor: req.ScheduledFor,
		Notes:        req.Notes,
	})
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(querycache.MutMarketSchedule, "error").Inc()
		upstream.WriteError(c, err)
		return
	}

	metrics.MutationsTotal.WithLabelValues(querycache.MutMarketSchedule, "ok").Inc()
	h.trail.Record(ctx, session.Actor(c), querycache.MutMarketSchedule, id, "outcome="+req.Outcome)
	h.cache.InvalidateFor(ctx, querycache.MutMarketSchedule)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Scheduled handles GET /console/resolution/scheduled
func (h *Handler) Scheduled(c *gin.Context) {
	ctx := c.Request.Context()

	var resolutions []upstream.ScheduledResolution
	err := h.cache.Get(ctx, querycache.ResScheduledResolutions, &resolutions, func(ctx context.Context) (any, error) {
		return h.api.ScheduledResolutions(ctx)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	if resolutions == nil {
		resolutions = []upstream.ScheduledResolution{}
	}
	c.JSON(http.StatusOK, gin.H{"resolutions": resolutions})
}

func (h *Handler) writeFlowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInFlight):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "resolution_in_flight",
			"message": "Sonuçlandırma zaten devam ediyor",
		})
	case errors.Is(err, ErrOutcomeMismatch):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "outcome_mismatch",
			"message": "Sonuç önizleme ile eşleşmiyor, lütfen tekrar önizleyin",
		})
	default:
		c.JSON(http.StatusConflict, gin.H{
			"error":   "preview_required",
			"message": "Önce sonuç önizlemesi alınmalıdır",
		})
	}
}

// resolveRequest encodes the screen outcome for the backend: YES maps
// to true, NO to false, and REFUND to a null outcome with type
// "refund". A refund has no losing side.
func resolveRequest(outcome, notes, evidence, actor string) upstream.ResolveMarketRequest {
	req := upstream.ResolveMarketRequest{
		Type:       "standard",
		Notes:      notes,
		Evidence:   evidence,
		ResolvedBy: actor,
	}
	switch outcome {
	case OutcomeYes:
		v := true
		req.Outcome = &v
	case OutcomeNo:
		v := false
		req.Outcome = &v
	case OutcomeRefund:
		req.Outcome = nil
		req.Type = "refund"
	}
	return req
}

func validOutcome(outcome string) bool {
	switch outcome {
	case OutcomeYes, OutcomeNo, OutcomeRefund:
		return true
	}
	return false
}
