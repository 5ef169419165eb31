package ledger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/moadev/moabot/internal/moabot/session"
)

// Transaction is one expense or income record as the ledger returns it.
type Transaction struct {
	ID       int64          `json:"id"`
	Type     session.TxType `json:"type"`
	Date     string         `json:"date"`
	Amount   int64          `json:"amount"`
	Category string         `json:"category"`
	Memo     string         `json:"memo"`
}

// TransactionInput is the payload for creating or fully replacing a record.
type TransactionInput struct {
	Type     session.TxType `json:"type"`
	Date     string         `json:"date"`
	Amount   int64          `json:"amount"`
	Category string         `json:"category"`
	Memo     string         `json:"memo"`
}

// ListLimitMax is the largest recent-list size the ledger accepts; callers
// must clamp before sending.
const (
	ListLimitMin     = 1
	ListLimitMax     = 50
	ListLimitDefault = 10
)

// CreateTransaction registers one record and returns its id.
func (c *Client) CreateTransaction(ctx context.Context, auth string, in TransactionInput) (int64, error) {
	var id int64
	if err := c.do(ctx, http.MethodPost, "/api/transactions", nil, auth, in, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRecent returns the newest records of the given type, newest first.
// limit must already be within [ListLimitMin, ListLimitMax].
func (c *Client) ListRecent(ctx context.Context, auth string, typ session.TxType, limit int) ([]Transaction, error) {
	q := url.Values{
		"type":  {string(typ)},
		"limit": {strconv.Itoa(limit)},
	}
	var items []Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions/recent", q, auth, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteTransaction removes one record by id.
func (c *Client) DeleteTransaction(ctx context.Context, auth string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", id), nil, auth, nil, nil)
}

// UpdateTransaction fully replaces one record by id.
func (c *Client) UpdateTransaction(ctx context.Context, auth string, id int64, in TransactionInput) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/transactions/%d", id), nil, auth, in, nil)
}
