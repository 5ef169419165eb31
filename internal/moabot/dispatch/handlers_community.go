package dispatch

import (
	"context"
	"fmt"

	"github.com/moadev/moabot/internal/moabot/ledger"
)

// handlers_community.go covers the auxiliary resources: board posts,
// replies, notices, members, budgets and sign-in. These are all direct
// 1:1 tool-to-operation mappings with size clamping.

func pageSize(args map[string]any) int {
	return clamp(argIntDefault(args, "limit", ledger.PageSizeDefault),
		ledger.PageSizeMin, ledger.PageSizeMax)
}

func (d *Dispatcher) createReply(ctx context.Context, c *call) (*Reply, Mutation) {
	bno, ok := argInt64(c.args, "bno")
	if !ok {
		return &Reply{Message: "댓글을 달 게시글 번호가 필요합니다.", Err: KindProtocol}, nil
	}
	id, err := d.ledger.CreateReply(ctx, c.auth, bno, argString(c.args, "content"))
	if err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("게시글 %d번에 댓글 등록 완료 (댓글 ID %d)", bno, id)}, nil
}

func (d *Dispatcher) listReplies(ctx context.Context, c *call) (*Reply, Mutation) {
	bno, ok := argInt64(c.args, "bno")
	if !ok {
		return &Reply{Message: "댓글을 조회할 게시글 번호가 필요합니다.", Err: KindProtocol}, nil
	}
	items, err := d.ledger.ListReplies(ctx, c.auth, bno, pageSize(c.args))
	if err != nil {
		return failure(err), nil
	}
	if len(items) == 0 {
		return &Reply{OK: true, Message: fmt.Sprintf("게시글 %d번에 댓글이 없습니다.", bno)}, nil
	}
	lines := make([]string, 0, len(items))
	for _, r := range items {
		lines = append(lines, fmt.Sprintf("[%d] %s: %s (%s)", r.ID, r.Writer, r.Content, r.Date))
	}
	return &Reply{
		OK:      true,
		Message: fmt.Sprintf("게시글 %d번의 댓글 %d건입니다.", bno, len(items)),
		Items:   lines,
	}, nil
}

func (d *Dispatcher) deleteReply(ctx context.Context, c *call) (*Reply, Mutation) {
	id, ok := argInt64(c.args, "reply_id")
	if !ok {
		return &Reply{Message: "삭제할 댓글 ID가 필요합니다.", Err: KindProtocol}, nil
	}
	if err := d.ledger.DeleteReply(ctx, c.auth, id); err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("댓글 삭제 완료 (ID %d)", id)}, nil
}

func (d *Dispatcher) updateReply(ctx context.Context, c *call) (*Reply, Mutation) {
	id, ok := argInt64(c.args, "reply_id")
	if !ok {
		return &Reply{Message: "수정할 댓글 ID가 필요합니다.", Err: KindProtocol}, nil
	}
	if err := d.ledger.UpdateReply(ctx, c.auth, id, argString(c.args, "content")); err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("댓글 수정 완료 (ID %d)", id)}, nil
}

func (d *Dispatcher) createNotice(ctx context.Context, c *call) (*Reply, Mutation) {
	id, err := d.ledger.CreateNotice(ctx, c.auth,
		argString(c.args, "title"), argString(c.args, "content"), argString(c.args, "imageUrl"))
	if err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("공지 등록 완료 (ID %d)", id)}, nil
}

func (d *Dispatcher) listNotices(ctx context.Context, c *call) (*Reply, Mutation) {
	items, err := d.ledger.ListNotices(ctx, c.auth, pageSize(c.args))
	if err != nil {
		return failure(err), nil
	}
	if len(items) == 0 {
		return &Reply{OK: true, Message: "등록된 공지사항이 없습니다."}, nil
	}
	lines := make([]string, 0, len(items))
	for _, n := range items {
		lines = append(lines, fmt.Sprintf("[%d] %s (%s)", n.ID, n.Title, n.Date))
	}
	return &Reply{OK: true, Message: fmt.Sprintf("공지사항 %d건입니다.", len(items)), Items: lines}, nil
}

func (d *Dispatcher) deleteNotice(ctx context.Context, c *call) (*Reply, Mutation) {
	id, ok := argInt64(c.args, "notice_id")
	if !ok {
		return &Reply{Message: "삭제할 공지 ID가 필요합니다.", Err: KindProtocol}, nil
	}
	if err := d.ledger.DeleteNotice(ctx, c.auth, id); err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("공지 삭제 완료 (ID %d)", id)}, nil
}

func (d *Dispatcher) updateNotice(ctx context.Context, c *call) (*Reply, Mutation) {
	id, ok := argInt64(c.args, "notice_id")
	if !ok {
		return &Reply{Message: "수정할 공지 ID가 필요합니다.", Err: KindProtocol}, nil
	}
	err := d.ledger.UpdateNotice(ctx, c.auth, id,
		argString(c.args, "title"), argString(c.args, "content"), argString(c.args, "imageUrl"))
	if err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("공지 수정 완료 (ID %d)", id)}, nil
}

func (d *Dispatcher) createBoard(ctx context.Context, c *call) (*Reply, Mutation) {
	id, err := d.ledger.CreateBoard(ctx, c.auth,
		argString(c.args, "title"), argString(c.args, "content"), argString(c.args, "imageUrl"))
	if err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("게시글 등록 완료 (ID %d)", id)}, nil
}

func (d *Dispatcher) getBoard(ctx context.Context, c *call) (*Reply, Mutation) {
	id, ok := argInt64(c.args, "board_id")
	if !ok {
		return &Reply{Message: "조회할 게시글 번호가 필요합니다.", Err: KindProtocol}, nil
	}
	b, err := d.ledger.GetBoard(ctx, c.auth, id)
	if err != nil {
		return failure(err), nil
	}
	msg := fmt.Sprintf("[%d] %s\n작성자: %s | %s\n%s", b.ID, b.Title, b.Writer, b.Date, b.Content)
	return &Reply{OK: true, Message: msg}, nil
}

func (d *Dispatcher) deleteBoard(ctx context.Context, c *call) (*Reply, Mutation) {
	id, ok := argInt64(c.args, "board_id")
	if !ok {
		return &Reply{Message: "삭제할 게시글 번호가 필요합니다.", Err: KindProtocol}, nil
	}
	if err := d.ledger.DeleteBoard(ctx, c.auth, id); err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("게시글 삭제 완료 (ID %d)", id)}, nil
}

func (d *Dispatcher) listBoards(ctx context.Context, c *call) (*Reply, Mutation) {
	page := argIntDefault(c.args, "page", 1)
	if page < 1 {
		page = 1
	}
	items, err := d.ledger.ListBoards(ctx, c.auth, page, pageSize(c.args),
		argString(c.args, "keyword"), argString(c.args, "types"))
	if err != nil {
		return failure(err), nil
	}
	if len(items) == 0 {
		return &Reply{OK: true, Message: "조건에 맞는 게시글이 없습니다."}, nil
	}
	lines := make([]string, 0, len(items))
	for _, b := range items {
		lines = append(lines, fmt.Sprintf("[%d] %s - %s (%s)", b.ID, b.Title, b.Writer, b.Date))
	}
	return &Reply{OK: true, Message: fmt.Sprintf("게시글 %d건입니다.", len(items)), Items: lines}, nil
}

func (d *Dispatcher) updateBoard(ctx context.Context, c *call) (*Reply, Mutation) {
	id, ok := argInt64(c.args, "board_id")
	if !ok {
		return &Reply{Message: "수정할 게시글 번호가 필요합니다.", Err: KindProtocol}, nil
	}
	err := d.ledger.UpdateBoard(ctx, c.auth, id,
		argString(c.args, "title"), argString(c.args, "content"), argString(c.args, "imageUrl"))
	if err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("게시글 수정 완료 (ID %d)", id)}, nil
}

func (d *Dispatcher) listMembers(ctx context.Context, c *call) (*Reply, Mutation) {
	items, err := d.ledger.ListMembers(ctx, c.auth, pageSize(c.args))
	if err != nil {
		return failure(err), nil
	}
	if len(items) == 0 {
		return &Reply{OK: true, Message: "조회된 회원이 없습니다."}, nil
	}
	lines := make([]string, 0, len(items))
	for _, m := range items {
		lines = append(lines, fmt.Sprintf("[%d] %s (%s) - %s, 가입일 %s", m.ID, m.Nickname, m.Username, m.Role, m.JoinDate))
	}
	return &Reply{OK: true, Message: fmt.Sprintf("회원 %d명입니다.", len(items)), Items: lines}, nil
}

func (d *Dispatcher) verifyPassword(ctx context.Context, c *call) (*Reply, Mutation) {
	valid, err := d.ledger.VerifyPassword(ctx, c.auth, argString(c.args, "password"))
	if err != nil {
		return failure(err), nil
	}
	if !valid {
		return &Reply{OK: true, Message: "비밀번호가 일치하지 않습니다."}, nil
	}
	return &Reply{OK: true, Message: "비밀번호가 확인되었습니다."}, nil
}

func (d *Dispatcher) deleteMember(ctx context.Context, c *call) (*Reply, Mutation) {
	id, ok := argInt64(c.args, "member_id")
	if !ok {
		return &Reply{Message: "삭제할 회원 ID가 필요합니다.", Err: KindProtocol}, nil
	}
	if err := d.ledger.DeleteMember(ctx, c.auth, id); err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("회원 탈퇴 처리 완료 (ID %d)", id)}, nil
}

func (d *Dispatcher) updateMemberInfo(ctx context.Context, c *call) (*Reply, Mutation) {
	nickname := argString(c.args, "nickname")
	password := argString(c.args, "password")
	if nickname == "" && password == "" {
		return &Reply{Message: "변경할 닉네임 또는 비밀번호를 알려주세요.", Err: KindProtocol}, nil
	}
	if err := d.ledger.UpdateMemberInfo(ctx, c.auth, nickname, password); err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: "회원 정보 수정 완료"}, nil
}

func (d *Dispatcher) createBudget(ctx context.Context, c *call) (*Reply, Mutation) {
	year := argIntDefault(c.args, "year", 0)
	month := argIntDefault(c.args, "month", 0)
	limitAmount, _ := argInt64(c.args, "limitAmount")
	usedAmount, _ := argInt64(c.args, "usedAmount")
	id, err := d.ledger.CreateBudget(ctx, c.auth, year, month, limitAmount, usedAmount)
	if err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("%d년 %d월 예산 %s원 등록 완료 (ID %d)",
		year, month, FormatAmount(limitAmount), id)}, nil
}

func (d *Dispatcher) listBudgets(ctx context.Context, c *call) (*Reply, Mutation) {
	mid, ok := argInt64(c.args, "mid")
	if !ok {
		return &Reply{Message: "예산을 조회할 회원 ID가 필요합니다.", Err: KindProtocol}, nil
	}
	items, err := d.ledger.ListBudgets(ctx, c.auth, mid, pageSize(c.args))
	if err != nil {
		return failure(err), nil
	}
	if len(items) == 0 {
		return &Reply{OK: true, Message: "등록된 예산이 없습니다."}, nil
	}
	lines := make([]string, 0, len(items))
	for _, b := range items {
		lines = append(lines, fmt.Sprintf("%d년 %d월: 한도 %s원, 사용 %s원",
			b.Year, b.Month, FormatAmount(b.LimitAmount), FormatAmount(b.UsedAmount)))
	}
	return &Reply{OK: true, Message: fmt.Sprintf("예산 %d건입니다.", len(items)), Items: lines}, nil
}

func (d *Dispatcher) adjustBudgetLimit(ctx context.Context, c *call) (*Reply, Mutation) {
	mid, ok := argInt64(c.args, "mid")
	if !ok {
		return &Reply{Message: "예산을 조정할 회원 ID가 필요합니다.", Err: KindProtocol}, nil
	}
	delta, ok := argInt64(c.args, "delta")
	if !ok || delta == 0 {
		return &Reply{Message: "예산 증감액을 알려주세요.", Err: KindProtocol}, nil
	}
	newLimit, err := d.ledger.AdjustBudgetLimit(ctx, c.auth, mid, delta)
	if err != nil {
		return failure(err), nil
	}
	var verb string
	if delta > 0 {
		verb = fmt.Sprintf("%s원 올렸습니다", FormatAmount(delta))
	} else {
		verb = fmt.Sprintf("%s원 내렸습니다", FormatAmount(-delta))
	}
	return &Reply{OK: true, Message: fmt.Sprintf("이번 달 예산 한도를 %s. 현재 한도: %s원",
		verb, FormatAmount(newLimit))}, nil
}

func (d *Dispatcher) signIn(ctx context.Context, c *call) (*Reply, Mutation) {
	token, err := d.ledger.SignIn(ctx, argString(c.args, "username"), argString(c.args, "password"))
	if err != nil {
		return failure(err), nil
	}
	return &Reply{
		OK:      true,
		Message: "로그인 성공했습니다. 발급된 토큰:\nBearer " + token,
		Token:   token,
	}, nil
}
