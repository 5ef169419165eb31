package ledger

import (
	"context"
	"errors"
	"net/http"

	"github.com/moadev/moabot/internal/moabot/session"
)

// chat.go covers the disambiguation endpoints: find records by natural
// attributes, and commit a delete/update against the previously returned
// candidate numbers. A 409 from the find endpoints is the protocol signal
// that the caller must run a selection flow; it surfaces as *ConflictError.

// ChatQuery is the natural-attribute filter for the find endpoints.
// Amount is a pointer so "0" and "not given" stay distinguishable.
type ChatQuery struct {
	Type   session.TxType `json:"type"`
	Date   string         `json:"date,omitempty"`
	Amount *int64         `json:"amount,omitempty"`
	Memo   string         `json:"memo,omitempty"`
}

// ChatDeleteResult reports an unambiguous delete-by-chat.
type ChatDeleteResult struct {
	Deleted int `json:"deleted"`
}

// ChatDelete asks the ledger to delete the records matching q.
//
// Outcomes:
//   - exactly one match: the ledger deletes it, result returned.
//   - several matches: *ConflictError with the candidate set.
//   - no match: *APIError with KindNotFound.
func (c *Client) ChatDelete(ctx context.Context, auth string, q ChatQuery) (*ChatDeleteResult, error) {
	var out ChatDeleteResult
	if err := c.do(ctx, http.MethodPost, "/api/transactions/chat/delete", nil, auth, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatDeleteConfirm deletes the candidates with the given numbers from the
// candidate set the ledger produced for this identity. Numbers the ledger no
// longer recognises are reported back, not treated as a hard failure.
func (c *Client) ChatDeleteConfirm(ctx context.Context, auth string, typ session.TxType, numbers []int) (*ChatDeleteResult, error) {
	body := struct {
		Type       session.TxType `json:"type"`
		Selections []int          `json:"selections"`
	}{typ, numbers}

	var out ChatDeleteResult
	if err := c.do(ctx, http.MethodPost, "/api/transactions/chat/delete/confirm", nil, auth, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindUpdateCandidates asks the ledger which records match q for an update.
// Updates always require explicit confirmation, so any match count ≥ 1 comes
// back as a 409 candidate set; this method unwraps it into a plain slice.
// No match yields *APIError with KindNotFound.
func (c *Client) FindUpdateCandidates(ctx context.Context, auth string, q ChatQuery) ([]session.Candidate, error) {
	err := c.do(ctx, http.MethodPost, "/api/transactions/chat/update", nil, auth, q, nil)
	if err == nil {
		// The find endpoint never "succeeds": it either conflicts with
		// candidates or reports no match. Treat a bare 2xx as no match.
		return nil, &APIError{Kind: KindNotFound, StatusCode: http.StatusOK}
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Candidates, nil
	}
	return nil, err
}

// ChatUpdateConfirm commits an update of the candidate with the given number
// to the fully-specified record in. Field merging is the caller's job; the
// ledger replaces the record wholesale.
func (c *Client) ChatUpdateConfirm(ctx context.Context, auth string, typ session.TxType, number int, in TransactionInput) error {
	body := struct {
		Type           session.TxType   `json:"type"`
		CandidateIndex int              `json:"candidateIndex"`
		NewData        TransactionInput `json:"newData"`
	}{typ, number, in}

	return c.do(ctx, http.MethodPost, "/api/transactions/chat/update/confirm", nil, auth, body, nil)
}
