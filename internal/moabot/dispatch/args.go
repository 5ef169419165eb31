package dispatch

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Argument values arrive from decoded model output, so numbers are float64
// and everything may show up as a string. These helpers coerce defensively;
// schema validation has already run, but the confirm path and defaults still
// need lenient access.

func argString(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func argInt64(args map[string]any, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// argIntDefault returns the int value for key, or def when absent or
// uncoercible.
func argIntDefault(args map[string]any, key string, def int) int {
	n, ok := argInt64(args, key)
	if !ok {
		return def
	}
	return int(n)
}

// argMap returns a nested object argument, or an empty map.
func argMap(args map[string]any, key string) map[string]any {
	if m, ok := args[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// argSlice returns a nested array argument, or nil.
func argSlice(args map[string]any, key string) []any {
	s, _ := args[key].([]any)
	return s
}

// clamp bounds n to [lo, hi].
func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
