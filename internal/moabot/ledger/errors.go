package ledger

import (
	"errors"
	"fmt"

	"github.com/moadev/moabot/internal/moabot/session"
)

// Kind classifies a ledger call failure. The first four mirror the backend's
// HTTP statuses; Conflict is the disambiguation signal rather than a
// failure; Transport covers timeouts, connection errors and unreadable
// bodies.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated" // 401
	KindForbidden       Kind = "forbidden"       // 403
	KindNotFound        Kind = "not_found"       // 404
	KindBadRequest      Kind = "bad_request"     // 400
	KindConflict        Kind = "conflict"        // 409 on chat endpoints
	KindTransport       Kind = "transport"
)

// APIError is a ledger call that failed with a classified cause.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ledger: %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("ledger: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ledger: %s (status %d)", e.Kind, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

// ConflictError is the 409 response of a chat-disambiguation endpoint: the
// natural-attribute query matched more than one record (or, for updates, one
// or more records that all require explicit confirmation).
type ConflictError struct {
	Candidates []session.Candidate
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("ledger: %d candidate(s) need disambiguation", len(e.Candidates))
}

// KindOf extracts the failure Kind from err, or "" when err is not a
// classified ledger error. A *ConflictError reports KindConflict.
func KindOf(err error) Kind {
	var api *APIError
	if errors.As(err, &api) {
		return api.Kind
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return KindConflict
	}
	return ""
}

// UserMessage renders a classified ledger error as the Korean reply shown to
// the user. Unclassified errors get the generic transport message.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindUnauthenticated:
		return "로그인이 필요합니다. 먼저 로그인해 주세요."
	case KindForbidden:
		return "해당 내역에 접근할 권한이 없습니다."
	case KindNotFound:
		return "요청하신 내역을 찾을 수 없습니다."
	case KindBadRequest:
		return "요청 내용이 올바르지 않습니다. 다시 확인해 주세요."
	default:
		return "요청을 처리하지 못했습니다. 잠시 후 다시 시도해 주세요."
	}
}
