package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/logging"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
)

// Handler exposes the auth endpoints.
type Handler struct {
	manager *Manager
}

// NewHandler creates the auth HTTP handler.
func NewHandler(m *Manager) *Handler {
	return &Handler{manager: m}
}

// Login handles POST /login
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "E-posta ve şifre zorunludur",
		})
		return
	}

	user, err := h.manager.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrNotAdmin) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "not_admin",
				"message": AdminOnlyMessage,
			})
			return
		}
		logging.L(ctx).Warn("login failed", "email", req.Email, "error", err)
		upstream.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout handles POST /logout. Always succeeds locally.
func (h *Handler) Logout(c *gin.Context) {
	h.manager.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session handles GET /session
func (h *Handler) Session(c *gin.Context) {
	state := h.manager.State()

	resp := gin.H{"state": state.String()}
	if user, err := h.manager.CurrentUser(); err == nil {
		resp["user"] = user
	}
	c.JSON(http.StatusOK, resp)
}
