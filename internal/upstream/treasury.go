package upstream

import (
	"context"
)

// Treasury reads are aggregates computed entirely by the backend;
// the console caches and displays them.

// Treasury returns the treasury overview card.
func (c *Client) Treasury(ctx context.Context) (TreasuryOverview, error) {
	var overview TreasuryOverview
	if err := c.get(ctx, "treasury", "/admin/treasury/overview", nil, &overview); err != nil {
		return TreasuryOverview{}, err
	}
	return overview, nil
}

// Liquidity returns the platform liquidity report.
func (c *Client) Liquidity(ctx context.Context) (LiquidityReport, error) {
	var report LiquidityReport
	if err := c.get(ctx, "treasury", "/admin/treasury/liquidity", nil, &report); err != nil {
		return LiquidityReport{}, err
	}
	return report, nil
}

// NegativeBalances lists accounts that have gone below zero.
func (c *Client) NegativeBalances(ctx context.Context) ([]NegativeBalance, error) {
	var out struct {
		Balances []NegativeBalance `json:"balances"`
	}
	if err := c.get(ctx, "treasury", "/admin/treasury/negative-balances", nil, &out); err != nil {
		return nil, err
	}
	return out.Balances, nil
}

// TopHolders lists the largest account balances.
func (c *Client) TopHolders(ctx context.Context) ([]TopHolder, error) {
	var out struct {
		Holders []TopHolder `json:"holders"`
	}
	if err := c.get(ctx, "treasury", "/admin/treasury/top-holders", nil, &out); err != nil {
		return nil, err
	}
	return out.Holders, nil
}
