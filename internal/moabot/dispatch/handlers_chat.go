package dispatch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/moadev/moabot/internal/moabot/ledger"
	"github.com/moadev/moabot/internal/moabot/selection"
	"github.com/moadev/moabot/internal/moabot/session"
)

// handlers_chat.go holds the disambiguation flows: the find-by-attributes
// entry points that may open a pending flow, and Confirm, which interprets
// the follow-up message against the stored candidate set.

const restartHint = "요청을 이해하지 못했습니다. 처음부터 다시 말씀해 주세요."

func (d *Dispatcher) deleteByChat(typ session.TxType) handlerFunc {
	return func(ctx context.Context, c *call) (*Reply, Mutation) {
		if c.cur.HasPending() {
			return d.rejectOverlappingFlow(&c.cur), nil
		}
		res, err := d.ledger.ChatDelete(ctx, c.auth, chatQuery(typ, c.args))
		if err == nil {
			msg := fmt.Sprintf("%s %d건 삭제 완료", txLabel(typ), res.Deleted)
			return &Reply{OK: true, Message: msg}, func(s *session.Session) { s.ClearFlow() }
		}

		var conflict *ledger.ConflictError
		if errors.As(err, &conflict) {
			cands := conflict.Candidates
			mut := func(s *session.Session) {
				// Guards against a flow opened by an overlapping request
				// after our snapshot; the later reply wins nothing.
				_ = s.StartFlow(session.ActionDelete, typ, cands)
			}
			return &Reply{
				Message:    renderCandidates(typ, session.ActionDelete, cands),
				Candidates: cands,
				Err:        ledger.KindConflict,
			}, mut
		}
		if ledger.KindOf(err) == ledger.KindNotFound {
			return &Reply{OK: true, Message: fmt.Sprintf("삭제할 %s 내역이 없습니다.", txLabel(typ))}, nil
		}
		return failure(err), nil
	}
}

func (d *Dispatcher) updateByChat(typ session.TxType) handlerFunc {
	return func(ctx context.Context, c *call) (*Reply, Mutation) {
		if c.cur.HasPending() {
			return d.rejectOverlappingFlow(&c.cur), nil
		}
		cands, err := d.ledger.FindUpdateCandidates(ctx, c.auth, chatQuery(typ, c.args))
		if err != nil {
			if ledger.KindOf(err) == ledger.KindNotFound {
				return &Reply{OK: true, Message: fmt.Sprintf("수정할 %s 내역이 없습니다.", txLabel(typ))}, nil
			}
			return failure(err), nil
		}
		mut := func(s *session.Session) {
			_ = s.StartFlow(session.ActionUpdate, typ, cands)
		}
		return &Reply{
			Message:    renderCandidates(typ, session.ActionUpdate, cands),
			Candidates: cands,
			Err:        ledger.KindConflict,
		}, mut
	}
}

// rejectOverlappingFlow refuses to open a second flow while one is pending.
// Candidate numbers would otherwise collide across the two candidate sets.
func (d *Dispatcher) rejectOverlappingFlow(cur *session.Session) *Reply {
	d.log.Warn("flow start rejected, another flow pending",
		"pending_action", string(cur.PendingAction))
	return &Reply{
		Message: fmt.Sprintf("진행 중인 %s 요청이 있습니다. 먼저 번호를 선택하거나 '취소'라고 답해 주세요.",
			actionLabel(cur.PendingAction)),
		Err: KindProtocol,
	}
}

// confirmWithoutFlow answers the model-proposed confirm tools when no flow
// is pending. With a live flow the controller never consults the model, so
// reaching this handler is always a protocol violation.
func (d *Dispatcher) confirmWithoutFlow(ctx context.Context, c *call) (*Reply, Mutation) {
	return &Reply{
		Message: "진행 중인 수정 요청이 없습니다. 수정할 내역을 먼저 말씀해 주세요.",
		Err:     KindProtocol,
	}, nil
}

// Confirm resolves the pending flow with the user's follow-up message. The
// message never goes through the intent resolver: the selection parser and,
// for updates, the local patch parser are the only interpreters.
func (d *Dispatcher) Confirm(ctx context.Context, auth, text string, cur session.Session) (*Reply, Mutation) {
	if !cur.HasPending() {
		return &Reply{Message: restartHint, Err: KindProtocol}, nil
	}

	sel := selection.Parse(text)
	if sel.Kind == selection.KindCancel {
		msg := fmt.Sprintf("%s 요청을 취소했습니다.", actionLabel(cur.PendingAction))
		return &Reply{OK: true, Message: msg}, func(s *session.Session) { s.ClearFlow() }
	}

	switch cur.PendingAction {
	case session.ActionDelete:
		return d.confirmDelete(ctx, auth, sel, cur)
	case session.ActionUpdate:
		return d.confirmUpdate(ctx, auth, text, cur)
	default:
		return &Reply{Message: restartHint, Err: KindProtocol}, func(s *session.Session) { s.ClearFlow() }
	}
}

func (d *Dispatcher) confirmDelete(ctx context.Context, auth string, sel selection.Result, cur session.Session) (*Reply, Mutation) {
	var numbers []int
	switch sel.Kind {
	case selection.KindAll:
		for _, c := range cur.Candidates {
			numbers = append(numbers, c.Number)
		}
	case selection.KindNumbers:
		numbers = intersectCandidates(sel.Numbers, cur.Candidates)
	}
	if len(numbers) == 0 {
		// Fail closed: an unusable confirmation ends the flow rather than
		// looping forever.
		return &Reply{
			Message: "선택을 이해하지 못했습니다. 삭제를 취소했으니 처음부터 다시 요청해 주세요.",
			Err:     KindProtocol,
		}, func(s *session.Session) { s.ClearFlow() }
	}

	res, err := d.ledger.ChatDeleteConfirm(ctx, auth, cur.PendingTxType, numbers)
	if err != nil {
		if ledger.KindOf(err) == ledger.KindTransport {
			// Backend unreachable: keep the flow so the same confirmation
			// can be resent once it recovers.
			return failure(err), nil
		}
		return failure(err), func(s *session.Session) { s.ClearFlow() }
	}
	msg := fmt.Sprintf("%s %d건 삭제 완료", txLabel(cur.PendingTxType), res.Deleted)
	return &Reply{OK: true, Message: msg}, func(s *session.Session) { s.ClearFlow() }
}

func (d *Dispatcher) confirmUpdate(ctx context.Context, auth, text string, cur session.Session) (*Reply, Mutation) {
	patch, hasPatch := parseUpdatePatch(text, d.now())

	// Digits inside the patch itself ("2,000원", "2026-01-02") are not a
	// candidate choice, so the selection parser only sees the remainder.
	sel := selection.Parse(stripPatchSpans(text))

	number := 0
	if sel.Kind == selection.KindNumbers {
		if ns := intersectCandidates(sel.Numbers, cur.Candidates); len(ns) > 0 {
			number = ns[0]
		}
	}
	// A lone candidate needs no explicit number as long as the message says
	// what to change.
	if number == 0 && hasPatch && len(cur.Candidates) == 1 {
		number = cur.Candidates[0].Number
	}
	if number == 0 {
		return &Reply{
			Message: "수정할 항목을 확인하지 못했습니다. 수정을 취소했으니 처음부터 다시 요청해 주세요.",
			Err:     KindProtocol,
		}, func(s *session.Session) { s.ClearFlow() }
	}

	cand, ok := cur.CandidateByNumber(number)
	if !ok {
		return &Reply{
			Message: "해당 번호의 항목을 찾을 수 없습니다. 수정을 취소했으니 처음부터 다시 요청해 주세요.",
			Err:     KindProtocol,
		}, func(s *session.Session) { s.ClearFlow() }
	}

	// The ledger's confirm endpoint replaces the record wholesale, so the
	// partial patch is merged onto the candidate here.
	in := ledger.TransactionInput{
		Type:     cur.PendingTxType,
		Date:     cand.Date,
		Amount:   cand.Amount,
		Category: cand.Category,
		Memo:     cand.Memo,
	}
	if patch.date != "" {
		in.Date = patch.date
	}
	if patch.amount != nil {
		in.Amount = *patch.amount
	}
	if patch.memo != nil {
		in.Memo = *patch.memo
	}

	if err := d.ledger.ChatUpdateConfirm(ctx, auth, cur.PendingTxType, number, in); err != nil {
		if ledger.KindOf(err) == ledger.KindTransport {
			return failure(err), nil
		}
		if ledger.KindOf(err) == ledger.KindNotFound {
			// Candidate set went stale under us.
			return &Reply{
				Message: "해당 항목을 더 이상 찾을 수 없습니다. 처음부터 다시 요청해 주세요.",
				Err:     ledger.KindNotFound,
			}, func(s *session.Session) { s.ClearFlow() }
		}
		return failure(err), func(s *session.Session) { s.ClearFlow() }
	}
	msg := fmt.Sprintf("%s 수정 완료: %s %s원", txLabel(cur.PendingTxType), in.Date, FormatAmount(in.Amount))
	if in.Memo != "" {
		msg += " (" + in.Memo + ")"
	}
	return &Reply{OK: true, Message: msg}, func(s *session.Session) { s.ClearFlow() }
}

// intersectCandidates keeps, in candidate order, the candidate numbers that
// were actually selected. Numbers outside the set are dropped silently.
func intersectCandidates(selected []int, cands []session.Candidate) []int {
	want := make(map[int]bool, len(selected))
	for _, n := range selected {
		want[n] = true
	}
	var out []int
	for _, c := range cands {
		if want[c.Number] {
			out = append(out, c.Number)
		}
	}
	return out
}

// updatePatch is the partial record carried by an update confirmation.
// Pointers keep "change memo to empty" representable, though the text
// parser never produces it today.
type updatePatch struct {
	date   string
	amount *int64
	memo   *string
}

var (
	patchAmountRe = regexp.MustCompile(`([0-9][0-9,]*)\s*원`)
	patchMemoRe   = regexp.MustCompile(`메모(?:는|를|:)?\s*(\S+)`)
)

// stripPatchSpans blanks the amount and date spans a patch may carry, so
// that "2,000원으로 바꿔줘" with several candidates pending fails closed
// instead of committing candidate 2.
func stripPatchSpans(text string) string {
	s := patchAmountRe.ReplaceAllString(text, " ")
	return isoDateInTextRe.ReplaceAllString(s, " ")
}

// parseUpdatePatch extracts the partial field patch from a confirmation
// message: an amount written with a 원 suffix, an explicit or relative
// date, and a memo introduced by the keyword 메모. The second return
// reports whether any field was recognised.
func parseUpdatePatch(text string, now time.Time) (updatePatch, bool) {
	var p updatePatch

	if m := patchAmountRe.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			p.amount = &n
		}
	}
	if m := isoDateInTextRe.FindString(text); m != "" {
		p.date = m
	} else {
		for _, word := range relativeDateWords {
			if strings.Contains(text, word) {
				if resolved, ok := ResolveDate(word, now); ok {
					p.date = resolved
				}
				break
			}
		}
	}
	if m := patchMemoRe.FindStringSubmatch(text); m != nil {
		memo := strings.TrimRight(m[1], ",.")
		for _, suffix := range []string{"으로", "로"} {
			if trimmed, ok := strings.CutSuffix(memo, suffix); ok && trimmed != "" {
				memo = trimmed
				break
			}
		}
		p.memo = &memo
	}

	return p, p.date != "" || p.amount != nil || p.memo != nil
}

var (
	isoDateInTextRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	relativeDateWords = []string{"그저께", "그제", "어제", "오늘", "내일", "모레"}
)

// chatQuery coerces find-by-attributes arguments into the ledger's filter.
func chatQuery(typ session.TxType, args map[string]any) ledger.ChatQuery {
	q := ledger.ChatQuery{
		Type: typ,
		Date: argString(args, "date"),
		Memo: argString(args, "memo"),
	}
	if amount, ok := argInt64(args, "amount"); ok {
		q.Amount = &amount
	}
	return q
}
