// Package transactions implements the read-only ledger screen and the
// large-transaction monitor.
package transactions

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/listing"
	"github.com/kahinlabs/kahinadmin/internal/querycache"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
	"github.com/kahinlabs/kahinadmin/internal/validation"
)

// DefaultLargeThreshold flags transactions at or above this amount when
// the screen does not pass its own.
const DefaultLargeThreshold = 10000.0

// API is the slice of the upstream client this screen uses.
type API interface {
	ListTransactions(ctx context.Context, f listing.Filters) (upstream.TransactionPage, error)
	LargeTransactions(ctx context.Context, threshold float64) ([]upstream.Transaction, error)
}

// Handler serves the transaction endpoints.
type Handler struct {
	api   API
	cache *querycache.Cache
	lists *listing.State
}

// NewHandler creates the transactions HTTP handler.
func NewHandler(api API, cache *querycache.Cache, lists *listing.State) *Handler {
	return &Handler{api: api, cache: cache, lists: lists}
}

// List handles GET /console/transactions
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	f := h.lists.Resolve("transactions", listing.FromQuery(c))
	key := querycache.Key(querycache.ResTransactions, f.KeyParts()...)

	var page upstream.TransactionPage
	err := h.cache.Get(ctx, key, &page, func(ctx context.Context) (any, error) {
		return h.api.ListTransactions(ctx, f)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": page.Transactions,
		"meta":         listing.Meta(f.Page, page.TotalPages),
	})
}

// Large handles GET /console/transactions/large?threshold=
func (h *Handler) Large(c *gin.Context) {
	ctx := c.Request.Context()

	threshold := DefaultLargeThreshold
	if raw := strings.TrimSpace(c.Query("threshold")); validation.PositiveAmount(raw) {
		threshold, _ = strconv.ParseFloat(raw, 64)
	}

	key := querycache.Key(querycache.ResLargeTransactions,
		"threshold="+strconv.FormatFloat(threshold, 'f', -1, 64))

	var txs []upstream.Transaction
	err := h.cache.Get(ctx, key, &txs, func(ctx context.Context) (any, error) {
		return h.api.LargeTransactions(ctx, threshold)
	})
	if err != nil {
		upstream.WriteError(c, err)
		return
	}

	if txs == nil {
		txs = []upstream.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"threshold":    threshold,
	})
}
