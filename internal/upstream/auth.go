package upstream

import (
	"context"
)

// LoginResult is the backend's answer to a credential check. The token is
// opaque; the console never inspects it.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login exchanges credentials for a token. Role enforcement happens in the
// session manager, not here.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var result LoginResult
	if err := c.post(ctx, "auth", "/auth/login", body, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// Logout invalidates the token server-side. Callers treat failure as
// non-fatal; local session teardown proceeds regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "auth", "/auth/logout", nil, nil)
}
