// Package conversation is the per-message entry point. It owns the turn
// order: block state first, then a pending disambiguation flow, and only
// when neither applies is the intent resolver consulted.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/moadev/moabot/common/trace"
	"github.com/moadev/moabot/internal/moabot/audit"
	"github.com/moadev/moabot/internal/moabot/dispatch"
	"github.com/moadev/moabot/internal/moabot/intent"
	"github.com/moadev/moabot/internal/moabot/ledger"
	"github.com/moadev/moabot/internal/moabot/session"
	"github.com/moadev/moabot/internal/moabot/tools"
)

// Off-topic escalation ladder. The counter increments on every turn the
// resolver proposes no tool; the fifth such turn blocks the identity.
const (
	blockThreshold = 5

	msgNudge      = "저는 가계부 도우미예요. 지출이나 수입 관리에 대해 물어봐 주세요!"
	msgWarn       = "가계부 관련 요청만 도와드릴 수 있어요. 계속 다른 주제의 대화가 이어지면 응답이 제한됩니다."
	msgLastWarn   = "마지막 안내입니다. 다음에도 가계부와 관련 없는 메시지가 오면 대화가 차단됩니다."
	msgBlockOnset = "가계부와 관련 없는 대화가 반복되어 대화를 차단했습니다. 이후 요청에는 응답하지 않습니다."
	msgBlocked    = "차단된 사용자입니다. 더 이상 응답할 수 없습니다."

	msgLoginRequired  = "로그인이 필요한 기능입니다. 먼저 '아이디 ○○, 비밀번호 ○○로 로그인해줘'라고 말씀해 주세요."
	msgResolverBusy   = "지금은 요청이 많아 응답이 어렵습니다. 잠시 후 다시 시도해 주세요."
	msgResolverFailed = "요청을 이해하지 못했습니다. 다시 한번 말씀해 주세요."
	msgBadArguments   = "요청 내용을 이해하지 못했어요. 날짜, 금액, 카테고리를 함께 말씀해 주세요."
)

// Request is one inbound chat message.
type Request struct {
	// Identity partitions session state; "anonymous" when no credential.
	Identity string
	// Auth is the raw Authorization header value, passed through to the
	// ledger untouched. Empty when the caller is not signed in.
	Auth string
	// Message is the user's free text.
	Message string
}

// Response is the outbound reply. Candidates, when present, let the client
// render the choice list itself in addition to the text.
type Response struct {
	Reply      string              `json:"reply"`
	Candidates []session.Candidate `json:"candidates,omitempty"`

	// Token carries a freshly issued sign-in credential to the front-end.
	// It never goes on the HTTP wire; the reply text already tells HTTP
	// clients their token.
	Token string `json:"-"`
}

// Auditor records completed turns. Implemented by *audit.Store; nil
// disables the trail.
type Auditor interface {
	RecordTurn(ctx context.Context, e audit.Entry) error
}

// Controller drives one conversation turn at a time. Safe for concurrent
// use across identities.
type Controller struct {
	sessions   *session.Store
	resolver   intent.Provider
	dispatcher *dispatch.Dispatcher
	validator  *tools.Validator
	auditor    Auditor
	log        *slog.Logger
	now        func() time.Time
}

// New wires the controller. auditor may be nil.
func New(sessions *session.Store, resolver intent.Provider, dispatcher *dispatch.Dispatcher, validator *tools.Validator, auditor Auditor, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		sessions:   sessions,
		resolver:   resolver,
		dispatcher: dispatcher,
		validator:  validator,
		auditor:    auditor,
		log:        log,
		now:        time.Now,
	}
}

// Handle processes one inbound message and returns the reply.
func (c *Controller) Handle(ctx context.Context, req Request) (*Response, error) {
	traceID := trace.FromContext(ctx)
	if traceID == "" {
		traceID = trace.GenerateID()
		ctx = trace.WithTraceID(ctx, traceID)
	}
	log := c.log.With("trace_id", traceID, "identity", req.Identity)

	cur := c.sessions.Snapshot(req.Identity)

	// 1. Blocked identities get the onset message once, then a fixed
	// refusal forever. Nothing else runs.
	if cur.Blocked {
		if !cur.BlockNotified {
			c.sessions.Mutate(req.Identity, func(s *session.Session) {
				s.BlockNotified = true
			})
			return c.finish(ctx, log, req, "", false, string(dispatch.KindProtocol), &Response{Reply: msgBlockOnset})
		}
		return c.finish(ctx, log, req, "", false, string(dispatch.KindProtocol), &Response{Reply: msgBlocked})
	}

	// 2. A pending flow consumes the message directly; the resolver never
	// sees it. Letting the model reinterpret a selection reply would break
	// the protocol.
	if cur.HasPending() {
		log.Debug("routing to confirm flow",
			"action", string(cur.PendingAction), "candidates", len(cur.Candidates))
		reply, mut := c.dispatcher.Confirm(ctx, req.Auth, req.Message, cur)
		c.apply(req.Identity, mut)
		return c.finish(ctx, log, req, "", reply.OK, string(reply.Err), shape(reply))
	}

	// 3. Free intent.
	res, err := c.resolver.Resolve(ctx, intent.Request{
		Message: req.Message,
		Today:   c.now().Format("2006-01-02"),
	})
	if err != nil {
		log.Warn("intent resolution failed", "error", err)
		msg := msgResolverFailed
		if errors.Is(err, intent.ErrRateLimit) {
			msg = msgResolverBusy
		}
		return c.finish(ctx, log, req, "", false, string(ledger.KindTransport), &Response{Reply: msg})
	}

	if res.Invocation == nil {
		return c.naturalTurn(ctx, log, req, res.Reply)
	}
	return c.toolTurn(ctx, log, req, cur, res.Invocation)
}

// naturalTurn handles a no-tool turn: escalate the off-topic counter and
// pick the reply for its new value.
func (c *Controller) naturalTurn(ctx context.Context, log *slog.Logger, req Request, generic string) (*Response, error) {
	var count int
	c.sessions.Mutate(req.Identity, func(s *session.Session) {
		s.NaturalCount++
		count = s.NaturalCount
		if count >= blockThreshold {
			s.Blocked = true
			// The onset goes out with this very turn, so the next one
			// must already get the fixed refusal.
			s.BlockNotified = true
		}
	})
	log.Debug("natural turn", "count", count)

	var reply string
	switch {
	case count >= blockThreshold:
		reply = msgBlockOnset
	case count == 4:
		reply = msgLastWarn
	case count == 3:
		reply = msgWarn
	case count == 2:
		reply = msgNudge
	default:
		reply = generic
		if reply == "" {
			reply = msgNudge
		}
	}
	return c.finish(ctx, log, req, "", false, "", &Response{Reply: reply})
}

// toolTurn validates and dispatches one proposed tool invocation.
func (c *Controller) toolTurn(ctx context.Context, log *slog.Logger, req Request, cur session.Session, inv *intent.Invocation) (*Response, error) {
	// Any tool proposal resets the off-topic counter, even if the call
	// itself then fails.
	c.sessions.Mutate(req.Identity, func(s *session.Session) {
		s.NaturalCount = 0
	})

	if tools.RequiresAuth(inv.Name) && req.Auth == "" {
		log.Debug("tool requires credential", "tool", inv.Name)
		return c.finish(ctx, log, req, inv.Name, false, string(ledger.KindUnauthenticated), &Response{Reply: msgLoginRequired})
	}

	if inv.Arguments == nil {
		inv.Arguments = map[string]any{}
	}
	dispatch.NormalizeDateArgs(inv.Arguments, c.now())
	if err := c.validator.Validate(inv.Name, inv.Arguments); err != nil {
		log.Warn("tool arguments rejected", "tool", inv.Name, "error", err)
		return c.finish(ctx, log, req, inv.Name, false, string(dispatch.KindProtocol), &Response{Reply: msgBadArguments})
	}

	reply, mut := c.dispatcher.Dispatch(ctx, req.Auth, *inv, cur)
	c.apply(req.Identity, mut)
	return c.finish(ctx, log, req, inv.Name, reply.OK, string(reply.Err), shape(reply))
}

func (c *Controller) apply(identity string, mut dispatch.Mutation) {
	if mut == nil {
		return
	}
	c.sessions.Mutate(identity, mut)
}

// finish records the turn in the audit trail and returns the response.
func (c *Controller) finish(ctx context.Context, log *slog.Logger, req Request, tool string, ok bool, errKind string, resp *Response) (*Response, error) {
	if c.auditor != nil {
		entry := audit.Entry{
			TraceID:  trace.FromContext(ctx),
			Identity: req.Identity,
			Message:  req.Message,
			Tool:     tool,
			OK:       ok,
			ErrKind:  errKind,
			Reply:    resp.Reply,
			At:       c.now(),
		}
		if err := c.auditor.RecordTurn(ctx, entry); err != nil {
			log.Error("audit write failed", "error", err)
		}
	}
	return resp, nil
}

// shape flattens a dispatcher reply into the wire response: candidates pass
// through verbatim, item lines join under the message, everything else is
// the message alone.
func shape(r *dispatch.Reply) *Response {
	resp := &Response{Reply: r.Message, Candidates: r.Candidates, Token: r.Token}
	if len(r.Items) > 0 {
		if resp.Reply != "" {
			resp.Reply += "\n"
		}
		resp.Reply += strings.Join(r.Items, "\n")
	}
	return resp
}
