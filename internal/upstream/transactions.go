package upstream

import (
	"context"
	"net/url"
	"strconv"

	"github.com/kahinlabs/kahinadmin/internal/listing"
)

// ListTransactions returns a filtered page of the platform ledger.
func (c *Client) ListTransactions(ctx context.Context, f listing.Filters) (TransactionPage, error) {
	q := url.Values{}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.UserID != "" {
		q.Set("userId", f.UserID)
	}
	if f.From != "" {
		q.Set("from", f.From)
	}
	if f.To != "" {
		q.Set("to", f.To)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}

	var page TransactionPage
	if err := c.get(ctx, "transactions", "/admin/transactions", q, &page); err != nil {
		return TransactionPage{}, err
	}
	return page, nil
}

// LargeTransactions returns transactions at or above a threshold amount.
func (c *Client) LargeTransactions(ctx context.Context, threshold float64) ([]Transaction, error) {
	q := url.Values{}
	if threshold > 0 {
		q.Set("threshold", strconv.FormatFloat(threshold, 'f', -1, 64))
	}

	var out struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := c.get(ctx, "transactions", "/admin/transactions/large", q, &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// Dashboard returns the admin dashboard aggregate.
func (c *Client) Dashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	if err := c.get(ctx, "dashboard", "/admin/dashboard", nil, &stats); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}
