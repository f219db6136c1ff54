package upstream

import (
	"context"
	"net/url"
	"strconv"

	"github.com/kahinlabs/kahinadmin/internal/listing"
)

// CreateMarketRequest mirrors the admin market creation form.
type CreateMarketRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	ClosingDate string   `json:"closingDate"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	MarketType  string   `json:"marketType"`
	Options     []string `json:"options,omitempty"`
}

// UpdateMarketRequest carries partial market edits.
type UpdateMarketRequest struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	ClosingDate string   `json:"closingDate,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// ResolveMarketRequest is the resolve-enhanced payload. Outcome encodes
// YES as true, NO as false, and REFUND as null with Type "refund".
type ResolveMarketRequest struct {
	Outcome    *bool  `json:"outcome"`
	Type       string `json:"resolutionType"`
	Notes      string `json:"notes,omitempty"`
	Evidence   string `json:"evidence,omitempty"`
	ResolvedBy string `json:"resolvedBy,omitempty"`
}

// ScheduleResolutionRequest books a future resolution.
type ScheduleResolutionRequest struct {
	Outcome      string `json:"outcome"`
	ScheduledFor string `json:"scheduledFor"`
	Notes        string `json:"notes,omitempty"`
}

func marketQuery(f listing.Filters) url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q
}

// ListMarkets returns a filtered page of markets.
func (c *Client) ListMarkets(ctx context.Context, f listing.Filters) (MarketPage, error) {
	var page MarketPage
	if err := c.get(ctx, "markets", "/admin/markets", marketQuery(f), &page); err != nil {
		return MarketPage{}, err
	}
	return page, nil
}

// CreateMarket creates a new market.
func (c *Client) CreateMarket(ctx context.Context, req CreateMarketRequest) (Market, error) {
	var m Market
	if err := c.post(ctx, "markets", "/admin/markets", req, &m); err != nil {
		return Market{}, err
	}
	return m, nil
}

// UpdateMarket edits an existing market.
func (c *Client) UpdateMarket(ctx context.Context, id string, req UpdateMarketRequest) (Market, error) {
	var m Market
	if err := c.put(ctx, "markets", "/admin/markets/"+url.PathEscape(id), req, &m); err != nil {
		return Market{}, err
	}
	return m, nil
}

// DeleteMarket removes a market.
func (c *Client) DeleteMarket(ctx context.Context, id string) error {
	return c.delete(ctx, "markets", "/admin/markets/"+url.PathEscape(id))
}

// CloseMarket moves an open market to closed. The transition is forward
// only; the backend rejects anything else.
func (c *Client) CloseMarket(ctx context.Context, id string) error {
	return c.post(ctx, "markets", "/admin/markets/"+url.PathEscape(id)+"/close", nil, nil)
}

// ResolutionPreview asks the backend for a dry-run payout computation.
// Idempotent: calling it repeatedly with the same outcome changes nothing.
func (c *Client) ResolutionPreview(ctx context.Context, id, outcome string) (ResolutionPreview, error) {
	q := url.Values{}
	q.Set("outcome", outcome)

	var preview ResolutionPreview
	path := "/admin/markets/" + url.PathEscape(id) + "/resolution-preview"
	if err := c.get(ctx, "resolution", path, q, &preview); err != nil {
		return ResolutionPreview{}, err
	}
	return preview, nil
}

// ResolveMarket finalizes a closed market's outcome and triggers payouts.
// Never retried: resolving twice is not safe.
func (c *Client) ResolveMarket(ctx context.Context, id string, req ResolveMarketRequest) error {
	path := "/admin/markets/" + url.PathEscape(id) + "/resolve-enhanced"
	return c.post(ctx, "resolution", path, req, nil)
}

// ScheduleResolution books a resolution for a future time.
func (c *Client) ScheduleResolution(ctx context.Context, id string, req ScheduleResolutionRequest) error {
	path := "/admin/markets/" + url.PathEscape(id) + "/schedule-resolution"
	return c.post(ctx, "resolution", path, req, nil)
}

// ScheduledResolutions lists pending scheduled resolutions.
func (c *Client) ScheduledResolutions(ctx context.Context) ([]ScheduledResolution, error) {
	var out struct {
		Resolutions []ScheduledResolution `json:"resolutions"`
	}
	if err := c.get(ctx, "resolution", "/admin/markets/scheduled-resolutions", nil, &out); err != nil {
		return nil, err
	}
	return out.Resolutions, nil
}

// LowLiquidityMarkets lists markets flagged by the backend's health scoring.
func (c *Client) LowLiquidityMarkets(ctx context.Context) ([]MarketHealth, error) {
	var out struct {
		Markets []MarketHealth `json:"markets"`
	}
	if err := c.get(ctx, "markethealth", "/admin/markets/low-liquidity", nil, &out); err != nil {
		return nil, err
	}
	return out.Markets, nil
}

// PausedMarkets lists currently paused markets.
func (c *Client) PausedMarkets(ctx context.Context) ([]Market, error) {
	var out struct {
		Markets []Market `json:"markets"`
	}
	if err := c.get(ctx, "markethealth", "/admin/markets/paused", nil, &out); err != nil {
		return nil, err
	}
	return out.Markets, nil
}

// PauseMarket halts trading on a market.
func (c *Client) PauseMarket(ctx context.Context, id, reason string) error {
	body := map[string]string{"reason": reason}
	return c.post(ctx, "markethealth", "/admin/markets/"+url.PathEscape(id)+"/pause", body, nil)
}

// ResumeMarket reopens a paused market.
func (c *Client) ResumeMarket(ctx context.Context, id string) error {
	return c.post(ctx, "markethealth", "/admin/markets/"+url.PathEscape(id)+"/resume", nil, nil)
}
