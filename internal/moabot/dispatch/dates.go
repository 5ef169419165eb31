package dispatch

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Ledger dates are calendar dates in the user's zone, not the server's.
var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}()

var (
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	daysAgoRe   = regexp.MustCompile(`^(\d+)일\s*전$`)
	daysHenceRe = regexp.MustCompile(`^(\d+)일\s*후$`)
)

// ResolveDate turns raw into an ISO calendar date. It accepts ISO dates
// unchanged and the relative phrases "오늘", "어제", "내일", "그저께",
// "모레", "N일 전", "N일 후", evaluated in Asia/Seoul against now. The
// second return is false when raw is neither.
func ResolveDate(raw string, now time.Time) (string, bool) {
	raw = strings.TrimSpace(raw)
	if isoDateRe.MatchString(raw) {
		return raw, true
	}
	day := now.In(seoul)
	switch raw {
	case "오늘":
		return day.Format("2006-01-02"), true
	case "어제":
		return day.AddDate(0, 0, -1).Format("2006-01-02"), true
	case "내일":
		return day.AddDate(0, 0, 1).Format("2006-01-02"), true
	case "그저께", "그제":
		return day.AddDate(0, 0, -2).Format("2006-01-02"), true
	case "모레":
		return day.AddDate(0, 0, 2).Format("2006-01-02"), true
	}
	if m := daysAgoRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		return day.AddDate(0, 0, -n).Format("2006-01-02"), true
	}
	if m := daysHenceRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		return day.AddDate(0, 0, n).Format("2006-01-02"), true
	}
	return "", false
}

// NormalizeDateArgs rewrites relative date phrases in known date-bearing
// argument fields to ISO dates, in place. It runs before schema validation
// so a model that passes "어제" through still validates.
func NormalizeDateArgs(args map[string]any, now time.Time) {
	normalizeDateField(args, now)
	for _, item := range argSlice(args, "transactions") {
		if m, ok := item.(map[string]any); ok {
			normalizeDateField(m, now)
		}
	}
	normalizeDateField(argMap(args, "newData"), now)
}

func normalizeDateField(m map[string]any, now time.Time) {
	raw, ok := m["date"].(string)
	if !ok || raw == "" {
		return
	}
	if resolved, ok := ResolveDate(raw, now); ok {
		m["date"] = resolved
	}
}
