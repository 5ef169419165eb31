// Package intent is the language-model boundary: it turns one free-form
// user message into at most one proposed tool invocation.
//
// The layer only proposes; it never executes. Every proposal still flows
// through schema validation and the dispatch registry, and a message that
// answers a pending disambiguation prompt bypasses this layer entirely —
// letting the model reinterpret a selection reply would break the protocol.
package intent

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrRateLimit is returned when the upstream LLM API reports a rate-limiting
// condition (HTTP 429). Callers should surface a user-visible message rather
// than silently treating the turn as off-topic chatter.
var ErrRateLimit = errors.New("intent: upstream rate limit exceeded")

// ErrMalformedOutput is returned when the LLM response cannot be interpreted
// as either a reply or a tool call.
var ErrMalformedOutput = errors.New("intent: malformed response from LLM")

// Tool describes one callable operation shown to the model.
// Parameters is a raw JSON Schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Invocation is the model's proposal: call this tool with these arguments.
// Argument values arrive loosely typed and are coerced by the dispatcher.
type Invocation struct {
	Name      string
	Arguments map[string]any
}

// Request is the input to one resolution call.
type Request struct {
	// Message is the raw user text.
	Message string
	// Today is the current date in the user's timezone, ISO formatted.
	// Injected into the system prompt so the model grounds relative dates.
	Today string
}

// Result is either a proposed tool invocation or a plain conversational
// reply (Invocation nil). Exactly one of the two is meaningful.
type Result struct {
	Invocation *Invocation
	Reply      string
}

// Provider resolves free text into tool invocations.
// Implementations must be safe for concurrent use.
type Provider interface {
	Resolve(ctx context.Context, req Request) (*Result, error)
}
