package upstream

import (
	"context"
	"net/url"
	"strconv"

	"github.com/kahinlabs/kahinadmin/internal/listing"
)

// UpdateDisputeStatusRequest moves a dispute through its review states.
// Review notes and resolution fields pass through to the backend as-is.
type UpdateDisputeStatusRequest struct {
	Status           string `json:"status"`
	ReviewNotes      string `json:"reviewNotes,omitempty"`
	ResolutionAction string `json:"resolutionAction,omitempty"`
	ResolutionNotes  string `json:"resolutionNotes,omitempty"`
}

// ListDisputes returns a filtered page of disputes.
func (c *Client) ListDisputes(ctx context.Context, f listing.Filters) (DisputePage, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}

	var page DisputePage
	if err := c.get(ctx, "disputes", "/admin/disputes", q, &page); err != nil {
		return DisputePage{}, err
	}
	return page, nil
}

// DisputeStatistics returns aggregate dispute counts.
func (c *Client) DisputeStatistics(ctx context.Context) (DisputeStats, error) {
	var stats DisputeStats
	if err := c.get(ctx, "disputes", "/admin/disputes/stats", nil, &stats); err != nil {
		return DisputeStats{}, err
	}
	return stats, nil
}

// UpdateDisputeStatus changes a dispute's review status.
func (c *Client) UpdateDisputeStatus(ctx context.Context, id string, req UpdateDisputeStatusRequest) error {
	return c.patch(ctx, "disputes", "/admin/disputes/"+url.PathEscape(id)+"/status", req, nil)
}

// UpdateDisputePriority changes a dispute's priority.
func (c *Client) UpdateDisputePriority(ctx context.Context, id, priority string) error {
	body := map[string]string{"priority": priority}
	return c.patch(ctx, "disputes", "/admin/disputes/"+url.PathEscape(id)+"/priority", body, nil)
}
