// Package pipeline implements the one operation every dashboard widget runs:
// fetch items from a source, filter them for relevance, assemble a bounded
// corpus, synthesize a structured report through the analyzer, and collapse
// any failure into the FetchResult envelope.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/0x0BSoD/insightdash/internal/analysis"
	"github.com/0x0BSoD/insightdash/internal/metrics"
	"github.com/0x0BSoD/insightdash/internal/model"
	"github.com/0x0BSoD/insightdash/internal/relevance"
	"github.com/0x0BSoD/insightdash/internal/source"
)

const corpusSeparator = "\n---\n"

// Report is what a widget renders: the raw items alongside the synthesized
// analysis.
type Report[T analysis.Validator] struct {
	Query     string             `json:"query"`
	Source    string             `json:"source"`
	Items     []model.SourceItem `json:"items"`
	Analysis  T                  `json:"analysis"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// Pipeline binds one source to one prompt contract and one report type.
type Pipeline[T analysis.Validator] struct {
	Source   source.Source
	Analyzer *analysis.Analyzer

	SystemPrompt string
	// ModelKey, when set, selects the completion model from the model-config
	// table instead of the configured default.
	ModelKey string
	// FilterRelevance enables the stop-word-aware whole-word filter between
	// fetch and corpus assembly.
	FilterRelevance bool
	// ItemLimit caps each item's contribution to the corpus, in characters.
	// Zero means the normalizer's own bound is enough.
	ItemLimit int
}

// Aggregate runs the full fetch-filter-synthesize-parse sequence. Every
// failure class — configuration, transport, empty result, synthesis, parse —
// comes back as a failure envelope; nothing is retried.
func (p *Pipeline[T]) Aggregate(ctx context.Context, query string) model.FetchResult[Report[T]] {
	name := p.Source.Name()
	metrics.FetchTotal.WithLabelValues(name).Inc()

	items, err := p.Source.Fetch(ctx, query)
	if err != nil {
		metrics.FetchFailures.WithLabelValues(name).Inc()
		return model.Fail[Report[T]](err.Error())
	}

	if p.FilterRelevance {
		filtered := relevance.Filter(items, query)
		if len(filtered) == 0 {
			metrics.FetchFailures.WithLabelValues(name).Inc()
			return model.Fail[Report[T]](fmt.Sprintf(
				"none of the %d fetched items mention %q", len(items), query))
		}
		items = filtered
	}

	corpus := buildCorpus(items, p.ItemLimit)

	metrics.SynthesisTotal.WithLabelValues(name).Inc()
	raw, err := p.Analyzer.Synthesize(ctx, p.ModelKey, p.SystemPrompt, corpus)
	if err != nil {
		metrics.SynthesisFailures.WithLabelValues(name).Inc()
		return model.Fail[Report[T]](err.Error())
	}

	parsed, err := analysis.Parse[T](raw)
	if err != nil {
		metrics.SynthesisFailures.WithLabelValues(name).Inc()
		return model.Fail[Report[T]](fmt.Sprintf("failed to parse analysis: %v", err))
	}

	return model.Ok(Report[T]{
		Query:     query,
		Source:    name,
		Items:     items,
		Analysis:  parsed,
		FetchedAt: time.Now().UTC(),
	})
}

// buildCorpus concatenates trimmed item bodies with a separator, dropping
// blanks and capping each item's text. Plain concatenation with a cap — no
// deduplication, no compression.
func buildCorpus(items []model.SourceItem, itemLimit int) string {
	var parts []string
	for _, item := range items {
		body := strings.TrimSpace(item.Body)
		if body == "" {
			continue
		}
		if itemLimit > 0 && len(body) > itemLimit {
			body = body[:itemLimit]
		}
		parts = append(parts, body)
	}
	return strings.Join(parts, corpusSeparator)
}
