package utils

import (
	"math"
	"strconv"
	"strings"
)

// ParsePositiveInt returns the value of s when it is a whole number greater than zero.
// Anything else yields nil; callers treat that as "not provided" rather than an error.
func ParsePositiveInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// ParsePositiveFloat is the ParsePositiveInt rule for decimal columns such as price.
func ParsePositiveFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// OptionalString trims v and returns nil when nothing is left.
func OptionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
