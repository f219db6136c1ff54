package upstream

import (
	"context"
	"net/url"
	"strconv"

	"github.com/kahinlabs/kahinadmin/internal/listing"
)

// AdjustBalanceRequest credits or debits a user's balance with a reason.
type AdjustBalanceRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// ListUsers searches platform accounts.
func (c *Client) ListUsers(ctx context.Context, f listing.Filters) (UserPage, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}

	var page UserPage
	if err := c.get(ctx, "users", "/admin/users", q, &page); err != nil {
		return UserPage{}, err
	}
	return page, nil
}

// BalanceHistory returns a user's balance movement log.
func (c *Client) BalanceHistory(ctx context.Context, userID string, f listing.Filters) (BalanceHistoryPage, error) {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}

	var page BalanceHistoryPage
	path := "/admin/users/" + url.PathEscape(userID) + "/balance/history"
	if err := c.get(ctx, "users", path, q, &page); err != nil {
		return BalanceHistoryPage{}, err
	}
	return page, nil
}

// AdjustBalance applies a manual balance correction.
func (c *Client) AdjustBalance(ctx context.Context, userID string, req AdjustBalanceRequest) error {
	path := "/admin/users/" + url.PathEscape(userID) + "/balance/adjust"
	return c.post(ctx, "users", path, req, nil)
}

// FreezeBalance blocks a user's balance from trading and withdrawal.
func (c *Client) FreezeBalance(ctx context.Context, userID, reason string) error {
	body := map[string]string{"reason": reason}
	path := "/admin/users/" + url.PathEscape(userID) + "/balance/freeze"
	return c.post(ctx, "users", path, body, nil)
}

// UnfreezeBalance lifts a balance freeze.
func (c *Client) UnfreezeBalance(ctx context.Context, userID, reason string) error {
	body := map[string]string{"reason": reason}
	path := "/admin/users/" + url.PathEscape(userID) + "/balance/unfreeze"
	return c.post(ctx, "users", path, body, nil)
}

// PromoteUser grants the admin role.
func (c *Client) PromoteUser(ctx context.Context, userID string) error {
	return c.patch(ctx, "users", "/admin/users/"+url.PathEscape(userID)+"/promote", nil, nil)
}

// DemoteUser revokes the admin role.
func (c *Client) DemoteUser(ctx context.Context, userID string) error {
	return c.patch(ctx, "users", "/admin/users/"+url.PathEscape(userID)+"/demote", nil, nil)
}
