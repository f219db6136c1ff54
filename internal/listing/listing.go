// Package listing holds the filter and pagination contract shared by all
// resource screens: 1-indexed pages, prev/next derived from the total, and
// the rule that changing any filter field resets the page to 1.
package listing

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
)

// Filters is the shared filter object for list screens. All fields are
// optional; the zero value means "unfiltered first page".
type Filters struct {
	Status   string `json:"status,omitempty"`
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
	Type     string `json:"type,omitempty"`
	UserID   string `json:"userId,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Page     int    `json:"page,omitempty"`
}

// sameFields reports whether two filter sets match on everything except
// the page number.
func (f Filters) sameFields(other Filters) bool {
	f.Page = 0
	other.Page = 0
	return f == other
}

// FromQuery reads filters from request query parameters.
func FromQuery(c *gin.Context) Filters {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	return Filters{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
		Type:     c.Query("type"),
		UserID:   c.Query("userId"),
		From:     c.Query("from"),
		To:       c.Query("to"),
		Page:     page,
	}
}

// KeyParts renders the filters as deterministic cache key segments.
// Field order is fixed; empty fields are skipped.
func (f Filters) KeyParts() []string {
	parts := make([]string, 0, 9)
	add := func(name, value string) {
		if value != "" {
			parts = append(parts, name+"="+value)
		}
	}
	add("status", f.Status)
	add("search", f.Search)
	add("category", f.Category)
	add("priority", f.Priority)
	add("type", f.Type)
	add("user", f.UserID)
	add("from", f.From)
	add("to", f.To)
	if f.Page > 1 {
		parts = append(parts, "page="+strconv.Itoa(f.Page))
	}
	return parts
}

// State remembers the last filters used per screen so that a filter
// change can force the page back to 1 regardless of what the request
// carried. Prevents an empty result set from a stale page number.
type State struct {
	mu   sync.Mutex
	last map[string]Filters
}

// NewState creates an empty listing state.
func NewState() *State {
	return &State{last: make(map[string]Filters)}
}

// Resolve applies the page-reset rule for a screen and records the
// incoming filters as the screen's current ones.
func (s *State) Resolve(screen string, in Filters) Filters {
	if in.Page < 1 {
		in.Page = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.last[screen]; ok && !prev.sameFields(in) {
		in.Page = 1
	}
	s.last[screen] = in
	return in
}

// PageMeta is the pagination block returned with every list response.
type PageMeta struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
}

// Meta derives prev/next availability from a 1-indexed page and total.
func Meta(page, totalPages int) PageMeta {
	if page < 1 {
		page = 1
	}
	return PageMeta{
		Page:       page,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}
