package listing

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestResolveFilterChangeResetsPage(t *testing.T) {
	s := NewState()

	first := s.Resolve("deposits", Filters{Status: "pending", Page: 3})
	assert.Equal(t, 3, first.Page)

	// Same filters, new page: page sticks.
	next := s.Resolve("deposits", Filters{Status: "pending", Page: 4})
	assert.Equal(t, 4, next.Page)

	// Any filter field change forces page back to 1.
	changed := s.Resolve("deposits", Filters{Status: "rejected", Page: 4})
	assert.Equal(t, 1, changed.Page)
}

func TestResolveEveryFilterFieldTriggersReset(t *testing.T) {
	base := Filters{Status: "a", Search: "b", Category: "c", Priority: "d", Type: "e", UserID: "f", From: "g", To: "h", Page: 5}
	variants := []Filters{
		{Status: "x", Search: "b", Category: "c", Priority: "d", Type: "e", UserID: "f", From: "g", To: "h", Page: 5},
		{Status: "a", Search: "x", Category: "c", Priority: "d", Type: "e", UserID: "f", From: "g", To: "h", Page: 5},
		{Status: "a", Search: "b", Category: "x", Priority: "d", Type: "e", UserID: "f", From: "g", To: "h", Page: 5},
		{Status: "a", Search: "b", Category: "c", Priority: "x", Type: "e", UserID: "f", From: "g", To: "h", Page: 5},
		{Status: "a", Search: "b", Category: "c", Priority: "d", Type: "x", UserID: "f", From: "g", To: "h", Page: 5},
		{Status: "a", Search: "b", Category: "c", Priority: "d", Type: "e", UserID: "x", From: "g", To: "h", Page: 5},
		{Status: "a", Search: "b", Category: "c", Priority: "d", Type: "e", UserID: "f", From: "x", To: "h", Page: 5},
		{Status: "a", Search: "b", Category: "c", Priority: "d", Type: "e", UserID: "f", From: "g", To: "x", Page: 5},
	}

	for i, v := range variants {
		s := NewState()
		s.Resolve("screen", base)
		got := s.Resolve("screen", v)
		assert.Equal(t, 1, got.Page, "variant %d should reset page", i)
	}
}

func TestResolveScreensAreIndependent(t *testing.T) {
	s := NewState()
	s.Resolve("markets", Filters{Status: "open", Page: 2})

	// A different screen with different filters keeps its own page.
	got := s.Resolve("users", Filters{Search: "ali", Page: 7})
	assert.Equal(t, 7, got.Page)
}

func TestResolveNormalizesPage(t *testing.T) {
	s := NewState()
	got := s.Resolve("markets", Filters{Page: 0})
	assert.Equal(t, 1, got.Page)
}

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/console/deposits?status=pending&search=ref123&page=2", nil)

	f := FromQuery(c)
	assert.Equal(t, "pending", f.Status)
	assert.Equal(t, "ref123", f.Search)
	assert.Equal(t, 2, f.Page)
}

func TestMeta(t *testing.T) {
	tests := []struct {
		page, total      int
		hasPrev, hasNext bool
	}{
		{1, 1, false, false},
		{1, 3, false, true},
		{2, 3, true, true},
		{3, 3, true, false},
		{1, 0, false, false},
	}
	for _, tt := range tests {
		m := Meta(tt.page, tt.total)
		assert.Equal(t, tt.hasPrev, m.HasPrev, "page %d/%d", tt.page, tt.total)
		assert.Equal(t, tt.hasNext, m.HasNext, "page %d/%d", tt.page, tt.total)
	}
}
