package ledger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// community.go covers the auxiliary board resources: replies, notices and
// board posts. List sizes for these resources clamp to [10, 20] (the
// ledger's paging minimum is larger than the transaction list's).

const (
	PageSizeMin     = 10
	PageSizeMax     = 20
	PageSizeDefault = 10
)

// Reply is one comment on a board post.
type Reply struct {
	ID      int64  `json:"rno"`
	BoardID int64  `json:"bno"`
	Content string `json:"content"`
	Writer  string `json:"writer"`
	Date    string `json:"date"`
}

// Notice is one announcement.
type Notice struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
	Date     string `json:"date"`
}

// Board is one board post.
type Board struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
	Writer   string `json:"writer"`
	Date     string `json:"date"`
}

// CreateReply posts a comment on board bno and returns the reply id.
func (c *Client) CreateReply(ctx context.Context, auth string, bno int64, content string) (int64, error) {
	body := struct {
		BoardID int64  `json:"bno"`
		Content string `json:"content"`
	}{bno, content}
	var id int64
	if err := c.do(ctx, http.MethodPost, "/api/replies", nil, auth, body, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListReplies returns up to size comments for board bno.
func (c *Client) ListReplies(ctx context.Context, auth string, bno int64, size int) ([]Reply, error) {
	q := url.Values{"size": {strconv.Itoa(size)}}
	var items []Reply
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/replies/board/%d", bno), q, auth, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteReply soft-deletes one comment.
func (c *Client) DeleteReply(ctx context.Context, auth string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/replies/%d", id), nil, auth, nil, nil)
}

// UpdateReply replaces the content of one comment.
func (c *Client) UpdateReply(ctx context.Context, auth string, id int64, content string) error {
	body := struct {
		Content string `json:"content"`
	}{content}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/replies/%d", id), nil, auth, body, nil)
}

// CreateNotice publishes an announcement and returns its id.
func (c *Client) CreateNotice(ctx context.Context, auth, title, content, imageURL string) (int64, error) {
	body := struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ImageURL string `json:"imageUrl,omitempty"`
	}{title, content, imageURL}
	var id int64
	if err := c.do(ctx, http.MethodPost, "/api/notices", nil, auth, body, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListNotices returns up to size announcements, newest first.
func (c *Client) ListNotices(ctx context.Context, auth string, size int) ([]Notice, error) {
	q := url.Values{"size": {strconv.Itoa(size)}}
	var items []Notice
	if err := c.do(ctx, http.MethodGet, "/api/notices", q, auth, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteNotice removes one announcement.
func (c *Client) DeleteNotice(ctx context.Context, auth string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/notices/%d", id), nil, auth, nil, nil)
}

// UpdateNotice replaces one announcement.
func (c *Client) UpdateNotice(ctx context.Context, auth string, id int64, title, content, imageURL string) error {
	body := struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ImageURL string `json:"imageUrl,omitempty"`
	}{title, content, imageURL}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/notices/%d", id), nil, auth, body, nil)
}

// CreateBoard publishes a board post (writer taken from the credential) and
// returns its id.
func (c *Client) CreateBoard(ctx context.Context, auth, title, content, imageURL string) (int64, error) {
	body := struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ImageURL string `json:"imageUrl,omitempty"`
	}{title, content, imageURL}
	var id int64
	if err := c.do(ctx, http.MethodPost, "/api/boards", nil, auth, body, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetBoard fetches one board post.
func (c *Client) GetBoard(ctx context.Context, auth string, id int64) (*Board, error) {
	var out Board
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/boards/%d", id), nil, auth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBoard removes one board post (own posts only; 403 otherwise).
func (c *Client) DeleteBoard(ctx context.Context, auth string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/boards/%d", id), nil, auth, nil, nil)
}

// ListBoards returns one page of board posts, optionally filtered by a
// search keyword and search types (e.g. "tc" for title+content).
func (c *Client) ListBoards(ctx context.Context, auth string, page, size int, keyword, types string) ([]Board, error) {
	q := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
	if keyword != "" {
		q.Set("keyword", keyword)
	}
	if types != "" {
		q.Set("type", types)
	}
	var items []Board
	if err := c.do(ctx, http.MethodGet, "/api/boards", q, auth, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateBoard replaces one board post (own posts only).
func (c *Client) UpdateBoard(ctx context.Context, auth string, id int64, title, content, imageURL string) error {
	body := struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ImageURL string `json:"imageUrl,omitempty"`
	}{title, content, imageURL}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/boards/%d", id), nil, auth, body, nil)
}
