// Package nav describes the console's navigation shell: the fixed menu
// and the active-item rule the sidebar renders from.
package nav

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kahinlabs/kahinadmin/internal/session"
)

// Item is one sidebar entry.
type Item struct {
	Path  string `json:"path"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// menu is the fixed item list, in render order. Paths are the screen
// routes, not the API routes.
var menu = []Item{
	{Path: "/dashboard", Label: "Kontrol Paneli", Icon: "layout-dashboard"},
	{Path: "/markets", Label: "Piyasalar", Icon: "trending-up"},
	{Path: "/resolution", Label: "Piyasa Sonuçlandırma", Icon: "gavel"},
	{Path: "/market-health", Label: "Piyasa Sağlığı", Icon: "activity"},
	{Path: "/users", Label: "Kullanıcılar", Icon: "users"},
	{Path: "/deposits", Label: "Para Yatırma", Icon: "arrow-down-circle"},
	{Path: "/withdrawals", Label: "Para Çekme", Icon: "arrow-up-circle"},
	{Path: "/disputes", Label: "İtirazlar", Icon: "flag"},
	{Path: "/treasury", Label: "Hazine", Icon: "landmark"},
	{Path: "/transactions", Label: "İşlemler", Icon: "list"},
	{Path: "/audit", Label: "Denetim Kaydı", Icon: "scroll-text"},
}

// Menu returns the items visible to the given role. The console is
// admin-only end to end, so any other role sees an empty menu.
func Menu(role string) []Item {
	if role != "admin" {
		return nil
	}
	out := make([]Item, len(menu))
	copy(out, menu)
	return out
}

// Active maps the current screen path to the menu item it highlights.
// Exact match only; anything unknown falls back to /dashboard so the
// sidebar never renders with no selection.
func Active(path string) string {
	for _, item := range menu {
		if item.Path == path {
			return item.Path
		}
	}
	return "/dashboard"
}

// Handler serves GET /console/nav for the shell.
func Handler(c *gin.Context) {
	resp := gin.H{"active": Active(c.Query("path"))}

	if u, ok := session.CurrentUser(c); ok {
		resp["items"] = Menu(u.Role)
		resp["user"] = u
	} else {
		resp["items"] = Menu("")
	}

	c.JSON(http.StatusOK, resp)
}
