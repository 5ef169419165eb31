// Package selection interprets a free-text reply to a numbered candidate
// listing. It is deterministic and stateless: cancellation keywords win over
// everything, "all" keywords come next, and otherwise every maximal run of
// decimal digits in the text is taken as a selected number.
package selection

import (
	"strings"
)

// Kind classifies what the user's reply selects.
type Kind int

const (
	// KindNone means nothing usable was found in the reply.
	KindNone Kind = iota
	// KindNumbers means one or more candidate numbers were given.
	KindNumbers
	// KindAll means every candidate is selected.
	KindAll
	// KindCancel means the user abandoned the flow.
	KindCancel
)

// Result is the outcome of parsing one reply.
// Numbers is populated only when Kind == KindNumbers; it preserves order of
// appearance and contains no duplicates.
type Result struct {
	Kind    Kind
	Numbers []int
}

// cancelKeywords abort the flow. Checked before anything else so a message
// containing both a cancel word and a number still cancels.
var cancelKeywords = []string{"취소", "아니요", "아니오"}

// allKeywords select every candidate.
var allKeywords = []string{"모두", "전부", "다 삭제", "전체"}

// Parse interprets text as a candidate selection.
func Parse(text string) Result {
	for _, kw := range cancelKeywords {
		if strings.Contains(text, kw) {
			return Result{Kind: KindCancel}
		}
	}
	for _, kw := range allKeywords {
		if strings.Contains(text, kw) {
			return Result{Kind: KindAll}
		}
	}

	nums := digitRuns(text)
	if len(nums) == 0 {
		return Result{Kind: KindNone}
	}
	return Result{Kind: KindNumbers, Numbers: nums}
}

// digitRuns extracts every maximal run of decimal digits in order of
// appearance, deduplicated. Runs too long to fit an int are skipped rather
// than silently truncated.
func digitRuns(text string) []int {
	var (
		nums []int
		seen = make(map[int]bool)
		cur  int
		in   bool
		over bool
	)
	flush := func() {
		if in && !over && !seen[cur] {
			seen[cur] = true
			nums = append(nums, cur)
		}
		cur, in, over = 0, false, false
	}
	for _, r := range text {
		if r >= '0' && r <= '9' {
			in = true
			if cur > (1<<31-1)/10 {
				over = true
				continue
			}
			cur = cur*10 + int(r-'0')
			continue
		}
		flush()
	}
	flush()
	return nums
}
