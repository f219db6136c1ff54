package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userKey = "session_user"

// Guard gates every console route on the session state machine:
//
//	Hydrating       -> 503, ask the client to retry shortly
//	Unauthenticated -> redirect to /login (JSON 401 for API clients)
//	Authenticated   -> operator identity goes into the request context
//
// Responses on the deny paths carry no-store headers so a stale
// protected view can never be served from a cache after logout.
func Guard(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch m.State() {
		case StateHydrating:
			c.Header("Cache-Control", "no-store")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "hydrating",
				"message": "Oturum yükleniyor",
			})
			return

		case StateUnauthenticated:
			c.Header("Cache-Control", "no-store")
			if wantsHTML(c) {
				// 303 replaces history; no back-navigation into a stale view.
				c.Redirect(http.StatusSeeOther, "/login")
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "Oturum bulunamadı",
			})
			return
		}

		user, err := m.CurrentUser()
		if err != nil {
			// State flipped between checks; treat as unauthenticated.
			c.Header("Cache-Control", "no-store")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "Oturum bulunamadı",
			})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the operator identity set by the guard.
func CurrentUser(c *gin.Context) (User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}

// Actor returns the operator username for audit records, or "unknown"
// outside a guarded route.
func Actor(c *gin.Context) string {
	if u, ok := CurrentUser(c); ok {
		return u.Username
	}
	return "unknown"
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
