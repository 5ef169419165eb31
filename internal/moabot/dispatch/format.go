package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/moadev/moabot/internal/moabot/ledger"
	"github.com/moadev/moabot/internal/moabot/session"
)

// FormatAmount renders an integer amount of won with thousands separators:
// 1234567 → "1,234,567".
func FormatAmount(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		var b strings.Builder
		lead := len(s) % 3
		if lead > 0 {
			b.WriteString(s[:lead])
		}
		for i := lead; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

// txLabel names a transaction type in user-facing text.
func txLabel(typ session.TxType) string {
	if typ == session.TxIncome {
		return "수입"
	}
	return "지출"
}

// actionLabel names a pending action in user-facing text.
func actionLabel(a session.Action) string {
	if a == session.ActionUpdate {
		return "수정"
	}
	return "삭제"
}

// renderCandidates builds the numbered disambiguation listing plus the
// selection instructions.
func renderCandidates(typ session.TxType, action session.Action, cands []session.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s할 %s 내역이 %d건 있습니다. 어떤 항목을 %s할까요?\n",
		actionLabel(action), txLabel(typ), len(cands), actionLabel(action))
	for _, c := range cands {
		fmt.Fprintf(&b, "%d. %s | %s원", c.Number, c.Date, FormatAmount(c.Amount))
		if c.Category != "" {
			fmt.Fprintf(&b, " | %s", c.Category)
		}
		if c.Memo != "" {
			fmt.Fprintf(&b, " | %s", c.Memo)
		}
		b.WriteByte('\n')
	}
	b.WriteString("번호(예: 1 또는 1,3) / 모두 / 취소 중 하나로 답해 주세요.")
	return b.String()
}

// renderTransaction renders one ledger record as a list line.
func renderTransaction(t ledger.Transaction) string {
	line := fmt.Sprintf("[%d] %s | %s원 | %s", t.ID, t.Date, FormatAmount(t.Amount), t.Category)
	if t.Memo != "" {
		line += " | " + t.Memo
	}
	return line
}
