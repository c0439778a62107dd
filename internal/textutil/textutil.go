// Package textutil holds the small text helpers every response normalizer
// relies on: whitespace collapsing, word-boundary truncation, and tolerant
// numeric coercion for counters that upstream APIs return as either numbers
// or numeric-looking strings.
package textutil

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

const ellipsis = "..."

var whitespace = regexp.MustCompile(`\s+`)

// Collapse replaces runs of whitespace with a single space and trims the ends.
func Collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Truncate cuts s down to at most max runes, breaking at the last whole-word
// boundary before the cutoff and appending an ellipsis. Strings already within
// the limit are returned unchanged.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= len(ellipsis) {
		return string(r[:max])
	}

	cut := string(r[:max-len(ellipsis)])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ") + ellipsis
}

// CoerceCount converts an engagement counter of unknown JSON type into a
// non-negative int. Numbers and numeric-looking strings are accepted;
// everything else, including negatives, coerces to 0.
func CoerceCount(v any) int {
	switch n := v.(type) {
	case int:
		return clampNonNegative(n)
	case int64:
		return clampNonNegative(int(n))
	case float64:
		return clampNonNegative(int(n))
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return clampNonNegative(int(f))
		}
		return 0
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return clampNonNegative(parsed)
	default:
		return 0
	}
}

// CoerceRatio converts an upvote-ratio field into a float64 in the same
// tolerant way as CoerceCount, defaulting to 0 on anything unparseable.
func CoerceRatio(v any) float64 {
	switch f := v.(type) {
	case float64:
		if f < 0 {
			return 0
		}
		return f
	case json.Number:
		parsed, err := f.Float64()
		if err != nil || parsed < 0 {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || parsed < 0 {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
