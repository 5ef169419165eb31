package ledger

import (
	"context"
	"net/http"
	"net/url"

	"github.com/moadev/moabot/internal/moabot/session"
)

// SummaryResult is a period total for one transaction type.
type SummaryResult struct {
	Period string `json:"period"`
	Date   string `json:"date"`
	Total  int64  `json:"total"`
}

// TopCategoryResult names the category with the largest expense total in a
// period.
type TopCategoryResult struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

// WeekdayAvgResult is the weekday with the highest average expense within
// the requested scope, plus the per-weekday averages.
type WeekdayAvgResult struct {
	TopWeekday string           `json:"topWeekday"`
	TopAverage int64            `json:"topAverage"`
	Averages   map[string]int64 `json:"averages"`
}

// Summary returns the total of the given type over period ("day", "week",
// "month", "year") anchored at date (ISO, empty = server's today).
func (c *Client) Summary(ctx context.Context, auth string, typ session.TxType, period, date string) (*SummaryResult, error) {
	q := url.Values{"type": {string(typ)}, "period": {period}}
	if date != "" {
		q.Set("date", date)
	}
	var out SummaryResult
	if err := c.do(ctx, http.MethodGet, "/api/summary", q, auth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TopExpenseCategory returns the category with the largest expense total
// over period anchored at date. Expense only; income is never included.
func (c *Client) TopExpenseCategory(ctx context.Context, auth, period, date string) (*TopCategoryResult, error) {
	q := url.Values{"period": {period}}
	if date != "" {
		q.Set("date", date)
	}
	var out TopCategoryResult
	if err := c.do(ctx, http.MethodGet, "/api/summary/top-category", q, auth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WeekdayAverages returns per-weekday average expense for scope "month"
// (month formatted YYYY-MM) or "year" (year formatted YYYY). Empty month or
// year means the current one.
func (c *Client) WeekdayAverages(ctx context.Context, auth, scope, month, year string) (*WeekdayAvgResult, error) {
	q := url.Values{"scope": {scope}}
	if month != "" {
		q.Set("month", month)
	}
	if year != "" {
		q.Set("year", year)
	}
	var out WeekdayAvgResult
	if err := c.do(ctx, http.MethodGet, "/api/summary/weekday-avg", q, auth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
