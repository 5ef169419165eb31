package dispatch

import (
	"context"
	"fmt"

	"github.com/moadev/moabot/internal/moabot/ledger"
	"github.com/moadev/moabot/internal/moabot/session"
)

func (d *Dispatcher) createTx(typ session.TxType) handlerFunc {
	return func(ctx context.Context, c *call) (*Reply, Mutation) {
		in := transactionInput(typ, c.args)
		id, err := d.ledger.CreateTransaction(ctx, c.auth, in)
		if err != nil {
			return failure(err), nil
		}
		msg := fmt.Sprintf("%s %s원 %s %s 등록 완료 (ID %d)",
			in.Date, FormatAmount(in.Amount), in.Category, txLabel(typ), id)
		return &Reply{OK: true, Message: msg}, nil
	}
}

func (d *Dispatcher) createTxBatch(typ session.TxType) handlerFunc {
	return func(ctx context.Context, c *call) (*Reply, Mutation) {
		items := argSlice(c.args, "transactions")
		if len(items) == 0 {
			return &Reply{Message: "등록할 내역이 없습니다.", Err: KindProtocol}, nil
		}

		// Items are committed one by one; a failure never rolls back the
		// ones already created.
		var lines []string
		created, failed := 0, 0
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				failed++
				lines = append(lines, fmt.Sprintf("%d번째 항목: 형식이 올바르지 않습니다.", i+1))
				continue
			}
			in := transactionInput(typ, m)
			id, err := d.ledger.CreateTransaction(ctx, c.auth, in)
			if err != nil {
				failed++
				lines = append(lines, fmt.Sprintf("%d번째 항목 (%s %s원): %s",
					i+1, in.Date, FormatAmount(in.Amount), ledger.UserMessage(err)))
				continue
			}
			created++
			lines = append(lines, fmt.Sprintf("%d번째 항목: %s %s원 %s 등록 완료 (ID %d)",
				i+1, in.Date, FormatAmount(in.Amount), in.Category, id))
		}

		msg := fmt.Sprintf("%s %d건 등록 완료", txLabel(typ), created)
		if failed > 0 {
			msg += fmt.Sprintf(", %d건 실패", failed)
		}
		return &Reply{OK: created > 0, Message: msg, Items: lines}, nil
	}
}

func (d *Dispatcher) listTx(typ session.TxType) handlerFunc {
	return func(ctx context.Context, c *call) (*Reply, Mutation) {
		limit := clamp(argIntDefault(c.args, "limit", ledger.ListLimitDefault),
			ledger.ListLimitMin, ledger.ListLimitMax)
		items, err := d.ledger.ListRecent(ctx, c.auth, typ, limit)
		if err != nil {
			return failure(err), nil
		}
		if len(items) == 0 {
			return &Reply{OK: true, Message: fmt.Sprintf("최근 %s 내역이 없습니다.", txLabel(typ))}, nil
		}
		lines := make([]string, 0, len(items))
		for _, t := range items {
			lines = append(lines, renderTransaction(t))
		}
		return &Reply{
			OK:      true,
			Message: fmt.Sprintf("최근 %s 내역 %d건입니다.", txLabel(typ), len(items)),
			Items:   lines,
		}, nil
	}
}

func (d *Dispatcher) deleteTxByID(ctx context.Context, c *call) (*Reply, Mutation) {
	id, ok := argInt64(c.args, "expense_id")
	if !ok {
		return &Reply{Message: "삭제할 지출 ID가 필요합니다.", Err: KindProtocol}, nil
	}
	if err := d.ledger.DeleteTransaction(ctx, c.auth, id); err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("지출 삭제 완료 (ID %d)", id)}, nil
}

func (d *Dispatcher) updateTxByID(ctx context.Context, c *call) (*Reply, Mutation) {
	id, ok := argInt64(c.args, "expense_id")
	if !ok {
		return &Reply{Message: "수정할 지출 ID가 필요합니다.", Err: KindProtocol}, nil
	}
	in := transactionInput(session.TxExpense, c.args)
	if err := d.ledger.UpdateTransaction(ctx, c.auth, id, in); err != nil {
		return failure(err), nil
	}
	return &Reply{OK: true, Message: fmt.Sprintf("지출 수정 완료 (ID %d): %s %s원 %s",
		id, in.Date, FormatAmount(in.Amount), in.Category)}, nil
}

func (d *Dispatcher) summary(typ session.TxType) handlerFunc {
	return func(ctx context.Context, c *call) (*Reply, Mutation) {
		period := argString(c.args, "period")
		date := argString(c.args, "date")
		res, err := d.ledger.Summary(ctx, c.auth, typ, period, date)
		if err != nil {
			return failure(err), nil
		}
		msg := fmt.Sprintf("%s %s 합계는 %s원입니다.",
			periodLabel(res.Period, res.Date), txLabel(typ), FormatAmount(res.Total))
		return &Reply{OK: true, Message: msg}, nil
	}
}

func (d *Dispatcher) topExpenseCategory(ctx context.Context, c *call) (*Reply, Mutation) {
	period := argString(c.args, "period")
	date := argString(c.args, "date")
	res, err := d.ledger.TopExpenseCategory(ctx, c.auth, period, date)
	if err != nil {
		return failure(err), nil
	}
	if res.Category == "" {
		return &Reply{OK: true, Message: "해당 기간에 지출 내역이 없습니다."}, nil
	}
	msg := fmt.Sprintf("%s 가장 지출이 많은 카테고리는 '%s'(%s원)입니다.",
		periodLabel(period, date), res.Category, FormatAmount(res.Total))
	return &Reply{OK: true, Message: msg}, nil
}

func (d *Dispatcher) weekdayAverages(ctx context.Context, c *call) (*Reply, Mutation) {
	scope := argString(c.args, "scope")
	month := argString(c.args, "month")
	year := argString(c.args, "year")
	res, err := d.ledger.WeekdayAverages(ctx, c.auth, scope, month, year)
	if err != nil {
		return failure(err), nil
	}
	if res.TopWeekday == "" {
		return &Reply{OK: true, Message: "해당 기간에 지출 내역이 없습니다."}, nil
	}
	lines := make([]string, 0, len(weekdayOrder))
	for _, wd := range weekdayOrder {
		if avg, ok := res.Averages[wd]; ok {
			lines = append(lines, fmt.Sprintf("%s요일 평균 %s원", wd, FormatAmount(avg)))
		}
	}
	msg := fmt.Sprintf("평균 지출이 가장 많은 요일은 %s요일(%s원)입니다.",
		res.TopWeekday, FormatAmount(res.TopAverage))
	return &Reply{OK: true, Message: msg, Items: lines}, nil
}

var weekdayOrder = []string{"월", "화", "수", "목", "금", "토", "일"}

func periodLabel(period, date string) string {
	var p string
	switch period {
	case "day":
		p = "일"
	case "week":
		p = "주간"
	case "month":
		p = "월간"
	case "year":
		p = "연간"
	default:
		p = period
	}
	if date != "" {
		return date + " 기준 " + p
	}
	return p
}

// transactionInput coerces create/update arguments into the ledger's record
// shape. Missing optional fields stay zero.
func transactionInput(typ session.TxType, args map[string]any) ledger.TransactionInput {
	amount, _ := argInt64(args, "amount")
	return ledger.TransactionInput{
		Type:     typ,
		Date:     argString(args, "date"),
		Amount:   amount,
		Category: argString(args, "category"),
		Memo:     argString(args, "memo"),
	}
}
