package ledger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// account.go covers members, budgets and sign-in.

// Member is one registered user, as visible to an administrator.
type Member struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
	JoinDate string `json:"joinDate"`
}

// Budget is one monthly budget row.
type Budget struct {
	ID          int64 `json:"id"`
	MemberID    int64 `json:"mid"`
	Year        int   `json:"year"`
	Month       int   `json:"month"`
	LimitAmount int64 `json:"limitAmount"`
	UsedAmount  int64 `json:"usedAmount"`
}

// ListMembers returns up to size members (admin only; 403 otherwise).
func (c *Client) ListMembers(ctx context.Context, auth string, size int) ([]Member, error) {
	q := url.Values{"size": {strconv.Itoa(size)}}
	var items []Member
	if err := c.do(ctx, http.MethodGet, "/api/members", q, auth, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// VerifyPassword checks the signed-in user's password.
func (c *Client) VerifyPassword(ctx context.Context, auth, password string) (bool, error) {
	body := struct {
		Password string `json:"password"`
	}{password}
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/members/verify-password", nil, auth, body, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// DeleteMember removes an account (self or admin; 403 otherwise).
func (c *Client) DeleteMember(ctx context.Context, auth string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/members/%d", id), nil, auth, nil, nil)
}

// UpdateMemberInfo changes the signed-in user's nickname and/or password.
// Empty fields are left unchanged by the ledger.
func (c *Client) UpdateMemberInfo(ctx context.Context, auth, nickname, password string) error {
	body := struct {
		Nickname string `json:"nickname,omitempty"`
		Password string `json:"password,omitempty"`
	}{nickname, password}
	return c.do(ctx, http.MethodPatch, "/api/members/me", nil, auth, body, nil)
}

// CreateBudget registers a monthly budget and returns its id.
func (c *Client) CreateBudget(ctx context.Context, auth string, year, month int, limitAmount, usedAmount int64) (int64, error) {
	body := struct {
		Year        int   `json:"year"`
		Month       int   `json:"month"`
		LimitAmount int64 `json:"limitAmount"`
		UsedAmount  int64 `json:"usedAmount"`
	}{year, month, limitAmount, usedAmount}
	var id int64
	if err := c.do(ctx, http.MethodPost, "/api/budgets", nil, auth, body, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListBudgets returns up to size budgets for member mid.
func (c *Client) ListBudgets(ctx context.Context, auth string, mid int64, size int) ([]Budget, error) {
	q := url.Values{"size": {strconv.Itoa(size)}}
	var items []Budget
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/budgets/member/%d", mid), q, auth, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AdjustBudgetLimit changes member mid's current monthly budget limit by
// delta (positive raises, negative lowers) and returns the new limit.
func (c *Client) AdjustBudgetLimit(ctx context.Context, auth string, mid int64, delta int64) (int64, error) {
	body := struct {
		Delta int64 `json:"delta"`
	}{delta}
	var out struct {
		LimitAmount int64 `json:"limitAmount"`
	}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/budgets/member/%d/limit", mid), nil, auth, body, &out); err != nil {
		return 0, err
	}
	return out.LimitAmount, nil
}

// SignIn exchanges credentials for a bearer token.
func (c *Client) SignIn(ctx context.Context, username, password string) (string, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/sign-in", nil, "", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}
