package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuAdminSeesAllScreens(t *testing.T) {
	items := Menu("admin")
	require.Len(t, items, 11)
	assert.Equal(t, "/dashboard", items[0].Path)
	assert.Equal(t, "Kontrol Paneli", items[0].Label)
	assert.Equal(t, "/audit", items[len(items)-1].Path)
}

func TestMenuNonAdminSeesNothing(t *testing.T) {
	assert.Empty(t, Menu("user"))
	assert.Empty(t, Menu(""))
}

func TestMenuReturnsCopy(t *testing.T) {
	items := Menu("admin")
	items[0].Label = "mutated"
	assert.Equal(t, "Kontrol Paneli", Menu("admin")[0].Label)
}

func TestActive(t *testing.T) {
	assert.Equal(t, "/markets", Active("/markets"))
	assert.Equal(t, "/treasury", Active("/treasury"))

	// Unknown or nested paths fall back to the dashboard.
	assert.Equal(t, "/dashboard", Active("/markets/m-42"))
	assert.Equal(t, "/dashboard", Active("/nope"))
	assert.Equal(t, "/dashboard", Active(""))
}
