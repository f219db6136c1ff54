package upstream

import (
	"context"
	"net/url"
	"strconv"

	"github.com/kahinlabs/kahinadmin/internal/listing"
)

// CreateDepositRequest records a manual deposit on a user's behalf.
type CreateDepositRequest struct {
	UserID          string  `json:"userId"`
	Amount          float64 `json:"amount"`
	PaymentMethod   string  `json:"paymentMethod,omitempty"`
	ReferenceNumber string  `json:"referenceNumber,omitempty"`
}

func paymentQuery(f listing.Filters) url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
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
	return q
}

// ListDeposits returns a filtered page of deposits.
func (c *Client) ListDeposits(ctx context.Context, f listing.Filters) (DepositPage, error) {
	var page DepositPage
	if err := c.get(ctx, "deposits", "/admin/deposits", paymentQuery(f), &page); err != nil {
		return DepositPage{}, err
	}
	return page, nil
}

// CreateDeposit records a manual deposit.
func (c *Client) CreateDeposit(ctx context.Context, req CreateDepositRequest) (Deposit, error) {
	var d Deposit
	if err := c.post(ctx, "deposits", "/admin/deposits", req, &d); err != nil {
		return Deposit{}, err
	}
	return d, nil
}

// VerifyDeposit approves a pending deposit with review notes.
func (c *Client) VerifyDeposit(ctx context.Context, id, notes string) error {
	body := map[string]string{"notes": notes}
	return c.post(ctx, "deposits", "/admin/deposits/"+url.PathEscape(id)+"/verify", body, nil)
}

// RejectDeposit rejects a pending deposit with review notes.
func (c *Client) RejectDeposit(ctx context.Context, id, notes string) error {
	body := map[string]string{"notes": notes}
	return c.post(ctx, "deposits", "/admin/deposits/"+url.PathEscape(id)+"/reject", body, nil)
}

// ListWithdrawals returns a filtered page of withdrawals.
func (c *Client) ListWithdrawals(ctx context.Context, f listing.Filters) (WithdrawalPage, error) {
	var page WithdrawalPage
	if err := c.get(ctx, "withdrawals", "/admin/withdrawals", paymentQuery(f), &page); err != nil {
		return WithdrawalPage{}, err
	}
	return page, nil
}

// ApproveWithdrawal approves a pending withdrawal with review notes.
func (c *Client) ApproveWithdrawal(ctx context.Context, id, notes string) error {
	body := map[string]string{"notes": notes}
	return c.post(ctx, "withdrawals", "/admin/withdrawals/"+url.PathEscape(id)+"/approve", body, nil)
}

// RejectWithdrawal rejects a pending withdrawal with review notes.
func (c *Client) RejectWithdrawal(ctx context.Context, id, notes string) error {
	body := map[string]string{"notes": notes}
	return c.post(ctx, "withdrawals", "/admin/withdrawals/"+url.PathEscape(id)+"/reject", body, nil)
}
