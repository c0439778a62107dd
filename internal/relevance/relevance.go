// Package relevance implements the precision-oriented filter that drops
// fetched items not mentioning at least one meaningful token of the user's
// query. It is deliberately not a ranker: no scoring, no stemming, no
// ordering — items either mention the query or they don't.
package relevance

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/0x0BSoD/insightdash/internal/model"
)

// stopWords are query tokens that carry no topical signal on their own.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {},
	"how": {}, "are": {}, "was": {}, "were": {}, "has": {}, "have": {},
	"had": {}, "does": {}, "did": {}, "can": {}, "could": {}, "should": {},
	"would": {}, "will": {}, "not": {}, "but": {}, "from": {}, "into": {},
	"about": {}, "your": {}, "you": {}, "our": {}, "their": {}, "its": {},
	"best": {}, "top": {}, "most": {}, "more": {}, "than": {}, "then": {},
	"get": {}, "use": {}, "make": {},
}

var nonWord = regexp.MustCompile(`[^a-z0-9\s]+`)

// Tokens lower-cases the query, strips punctuation, splits on whitespace,
// and drops short tokens and stop-words. A query made entirely of noise
// yields an empty slice.
func Tokens(query string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(query), " ")

	return lo.Filter(strings.Fields(cleaned), func(tok string, _ int) bool {
		if len(tok) <= 2 {
			return false
		}
		_, stop := stopWords[tok]
		return !stop
	})
}

// Filter returns the subset of items whose body or title contains a
// whole-word, case-insensitive match of at least one meaningful query token.
// When the query yields no meaningful tokens the filter is a no-op and the
// input is returned unchanged.
func Filter(items []model.SourceItem, query string) []model.SourceItem {
	tokens := Tokens(query)
	if len(tokens) == 0 {
		return items
	}

	matchers := lo.Map(tokens, func(tok string, _ int) *regexp.Regexp {
		return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(tok) + `\b`)
	})

	return lo.Filter(items, func(item model.SourceItem, _ int) bool {
		for _, m := range matchers {
			if m.MatchString(item.Body) || m.MatchString(item.Title) {
				return true
			}
		}
		return false
	})
}
