package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/logging"
)

// Handler exposes the audit screen endpoint.
type Handler struct {
	trail *Trail
}

// NewHandler creates the audit HTTP handler.
func NewHandler(trail *Trail) *Handler {
	return &Handler{trail: trail}
}

// List handles GET /console/audit?action=&limit=
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.trail.List(ctx, c.Query("action"), limit)
	if err != nil {
		logging.L(ctx).Error("audit list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Denetim kaydı yüklenemedi",
		})
		return
	}

	if entries == nil {
		entries = []Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
