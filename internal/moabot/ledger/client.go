// Package ledger is the synchronous HTTP client for the transactional
// backend of record. It owns the translation from transport and status
// codes into typed outcomes; nothing above this package inspects an HTTP
// response.
//
// Authorization is an opaque pass-through: every operation takes the raw
// Authorization header value supplied by the caller and forwards it
// unchanged. The ledger enforces ownership and entitlement itself.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/moadev/moabot/internal/moabot/session"
)

const (
	defaultConnectTimeout = 3 * time.Second
	defaultReadTimeout    = 15 * time.Second
)

// Config configures the ledger client.
type Config struct {
	// BaseURL is the ledger service root, e.g. "http://localhost:8080".
	// Must not end with a trailing slash.
	BaseURL string

	// ConnectTimeout bounds dialing the backend. Defaults to 3 s.
	ConnectTimeout time.Duration

	// ReadTimeout bounds the whole request including the body read.
	// Defaults to 15 s.
	ReadTimeout time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a ledger client for the given backend.
func New(cfg Config) *Client {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.ReadTimeout,
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				MaxIdleConnsPerHost: 4,
			},
		},
	}
}

// conflictBody is the 409 payload of the chat-disambiguation endpoints.
type conflictBody struct {
	Message    string              `json:"message"`
	Candidates []session.Candidate `json:"candidates"`
}

// do performs one request and decodes a 2xx body into out (skipped when out
// is nil). Classified statuses become *APIError / *ConflictError; anything
// else at the transport level becomes an *APIError with KindTransport.
// There are no automatic retries.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, auth string, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ledger: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("ledger: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{Kind: KindTransport, StatusCode: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return &APIError{Kind: KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	case resp.StatusCode == http.StatusConflict:
		var cb conflictBody
		if err := json.Unmarshal(raw, &cb); err != nil || len(cb.Candidates) == 0 {
			return &APIError{Kind: KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("409 without candidate body")}
		}
		return &ConflictError{Candidates: cb.Candidates}
	case resp.StatusCode == http.StatusUnauthorized:
		return &APIError{Kind: KindUnauthenticated, StatusCode: resp.StatusCode, Message: bodyMessage(raw)}
	case resp.StatusCode == http.StatusForbidden:
		return &APIError{Kind: KindForbidden, StatusCode: resp.StatusCode, Message: bodyMessage(raw)}
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, StatusCode: resp.StatusCode, Message: bodyMessage(raw)}
	case resp.StatusCode == http.StatusBadRequest:
		return &APIError{Kind: KindBadRequest, StatusCode: resp.StatusCode, Message: bodyMessage(raw)}
	default:
		return &APIError{Kind: KindTransport, StatusCode: resp.StatusCode, Message: bodyMessage(raw)}
	}
}

// bodyMessage pulls the backend's "message" field out of an error body, or
// returns a trimmed snippet of the raw body.
func bodyMessage(raw []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &m); err == nil && m.Message != "" {
		return m.Message
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
