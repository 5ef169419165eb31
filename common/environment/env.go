// Package environment reads configuration overrides from environment
// variables. Each helper returns the parsed value or the given default when
// the variable is unset, empty, or unparseable.
package environment

import (
	"os"
	"strconv"
	"time"
)

// StringOr returns the named variable's value, or defaultValue when the
// variable is unset or empty.
func StringOr(name, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultValue
}

// BoolOr parses the named variable with strconv.ParseBool semantics.
func BoolOr(name string, defaultValue bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

// DurationOr parses the named variable as a time.Duration ("30s", "5m").
func DurationOr(name string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}
