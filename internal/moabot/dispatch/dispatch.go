// Package dispatch turns one tool invocation plus the current session state
// into one normalized reply and the session mutation that must accompany it.
//
// The dispatcher never writes to the session store itself: every entry point
// receives a snapshot and returns an optional mutation closure. The caller
// applies the mutation atomically after the reply is decided, so a failed
// ledger call can leave the pending-flow fields exactly as they were.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/moadev/moabot/internal/moabot/intent"
	"github.com/moadev/moabot/internal/moabot/ledger"
	"github.com/moadev/moabot/internal/moabot/session"
)

// KindProtocol marks replies that failed the selection protocol itself, not
// a ledger call: nothing usable in a confirmation message, or a flow started
// while another was active.
const KindProtocol = ledger.Kind("protocol")

// Reply is the dispatcher's uniform output. At most one of Items and
// Candidates is set; Message is always set when OK is true or when the
// failure is user-actionable.
type Reply struct {
	OK         bool
	Message    string
	Items      []string
	Candidates []session.Candidate
	Err        ledger.Kind

	// Token is set only by a successful sign-in, so a front-end can retain
	// the credential for the identity instead of leaving it in chat text.
	Token string
}

// Mutation is applied to the identity's session after the reply is decided.
// A nil Mutation means the session is untouched.
type Mutation func(*session.Session)

type call struct {
	auth string
	args map[string]any
	cur  session.Session
}

type handlerFunc func(ctx context.Context, c *call) (*Reply, Mutation)

// Dispatcher routes tool invocations to ledger operations and runs the
// delete/update selection flows. Safe for concurrent use.
type Dispatcher struct {
	ledger   *ledger.Client
	log      *slog.Logger
	now      func() time.Time
	handlers map[string]handlerFunc
}

// New builds the dispatcher with its full tool registry. The registry is a
// flat name-to-handler table built once; unknown names fail at dispatch.
func New(lc *ledger.Client, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		ledger: lc,
		log:    log,
		now:    time.Now,
	}
	d.handlers = map[string]handlerFunc{
		"create_expense":           d.createTx(session.TxExpense),
		"create_income":            d.createTx(session.TxIncome),
		"create_expense_batch":     d.createTxBatch(session.TxExpense),
		"create_income_batch":      d.createTxBatch(session.TxIncome),
		"list_expenses":            d.listTx(session.TxExpense),
		"list_incomes":             d.listTx(session.TxIncome),
		"delete_expense":           d.deleteTxByID,
		"update_expense":           d.updateTxByID,
		"delete_expense_by_chat":   d.deleteByChat(session.TxExpense),
		"delete_income_by_chat":    d.deleteByChat(session.TxIncome),
		"update_expense_by_chat":   d.updateByChat(session.TxExpense),
		"update_income_by_chat":    d.updateByChat(session.TxIncome),
		"get_expense_summary":      d.summary(session.TxExpense),
		"get_income_summary":       d.summary(session.TxIncome),
		"get_top_expense_category": d.topExpenseCategory,
		"top_expense_weekday_avg":  d.weekdayAverages,

		// The confirm tools only reach the registry when the model proposes
		// them with no flow pending; a live flow bypasses the resolver and
		// goes through Confirm instead.
		"update_expense_by_chat_confirm": d.confirmWithoutFlow,
		"update_income_by_chat_confirm":  d.confirmWithoutFlow,

		"create_reply": d.createReply,
		"list_replies": d.listReplies,
		"delete_reply": d.deleteReply,
		"update_reply": d.updateReply,

		"create_notice": d.createNotice,
		"list_notices":  d.listNotices,
		"delete_notice": d.deleteNotice,
		"update_notice": d.updateNotice,

		"create_board": d.createBoard,
		"get_board":    d.getBoard,
		"delete_board": d.deleteBoard,
		"list_boards":  d.listBoards,
		"update_board": d.updateBoard,

		"list_members":       d.listMembers,
		"verify_password":    d.verifyPassword,
		"delete_member":      d.deleteMember,
		"update_member_info": d.updateMemberInfo,

		"create_budget":       d.createBudget,
		"list_budgets":        d.listBudgets,
		"adjust_budget_limit": d.adjustBudgetLimit,

		"sign_in": d.signIn,
	}
	return d
}

// Dispatch runs one tool invocation against the current session snapshot.
func (d *Dispatcher) Dispatch(ctx context.Context, auth string, inv intent.Invocation, cur session.Session) (*Reply, Mutation) {
	h, ok := d.handlers[inv.Name]
	if !ok {
		d.log.Warn("unknown tool proposed", "tool", inv.Name)
		return &Reply{
			Message: "요청하신 작업을 처리할 수 없습니다.",
			Err:     KindProtocol,
		}, nil
	}
	args := inv.Arguments
	if args == nil {
		args = map[string]any{}
	}
	reply, mut := h(ctx, &call{auth: auth, args: args, cur: cur})
	d.log.Debug("tool dispatched", "tool", inv.Name, "ok", reply.OK, "err", string(reply.Err))
	return reply, mut
}

// failure builds a failed reply from a ledger error, reusing the client's
// Korean status translations.
func failure(err error) *Reply {
	return &Reply{
		Message: ledger.UserMessage(err),
		Err:     ledger.KindOf(err),
	}
}
