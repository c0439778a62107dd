// Package analysis turns a bounded text corpus into a structured marketing
// report: prompt contracts describing a JSON output schema, an invoker for an
// OpenAI-compatible (or local Ollama) completion endpoint in JSON mode, and
// typed parsing of the returned JSON with a minimal structural check.
package analysis

import (
	"encoding/json"
	"fmt"
)

// Validator is implemented by every report so parsing can reject completions
// that are well-formed JSON but structurally empty.
type Validator interface {
	Validate() error
}

type PainPoint struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Frequency   int    `json:"frequency"`
}

type PainPointReport struct {
	PainPoints []PainPoint `json:"painPoints"`
	Summary    string      `json:"summary"`
}

func (r PainPointReport) Validate() error {
	return requireNonEmpty("painPoints", len(r.PainPoints))
}

type Theme struct {
	Name      string `json:"name"`
	Sentiment string `json:"sentiment"`
	Mentions  int    `json:"mentions"`
}

type SentimentReport struct {
	Positive int     `json:"positive"`
	Neutral  int     `json:"neutral"`
	Negative int     `json:"negative"`
	Overall  string  `json:"overall"`
	Themes   []Theme `json:"themes"`
	Summary  string  `json:"summary"`
}

func (r SentimentReport) Validate() error {
	return requireNonEmpty("themes", len(r.Themes))
}

type ReviewInsight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Mentions    int    `json:"mentions"`
}

type ReviewReport struct {
	Complaints      []ReviewInsight `json:"complaints"`
	FeatureRequests []ReviewInsight `json:"featureRequests"`
	Summary         string          `json:"summary"`
}

func (r ReviewReport) Validate() error {
	if err := requireNonEmpty("complaints", len(r.Complaints)); err != nil {
		return err
	}
	return requireNonEmpty("featureRequests", len(r.FeatureRequests))
}

type Trend struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Momentum    string `json:"momentum"`
}

type TrendReport struct {
	Trends       []Trend  `json:"trends"`
	ContentIdeas []string `json:"contentIdeas"`
	Summary      string   `json:"summary"`
}

func (r TrendReport) Validate() error {
	return requireNonEmpty("trends", len(r.Trends))
}

type Competitor struct {
	Name       string `json:"name"`
	Strengths  string `json:"strengths"`
	Weaknesses string `json:"weaknesses"`
}

type CompetitorReport struct {
	Competitors   []Competitor `json:"competitors"`
	Opportunities []string     `json:"opportunities"`
	Summary       string       `json:"summary"`
}

func (r CompetitorReport) Validate() error {
	return requireNonEmpty("competitors", len(r.Competitors))
}

type DigestReport struct {
	Headlines []string `json:"headlines"`
	Summary   string   `json:"summary"`
}

func (r DigestReport) Validate() error {
	return requireNonEmpty("headlines", len(r.Headlines))
}

// Parse decodes a completion into a typed report and validates its required
// arrays. The exact cardinalities the prompts ask for remain a soft contract.
func Parse[T Validator](raw string) (T, error) {
	var report T
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return report, fmt.Errorf("malformed analysis JSON: %w", err)
	}
	if err := report.Validate(); err != nil {
		return report, err
	}
	return report, nil
}

func requireNonEmpty(field string, n int) error {
	if n == 0 {
		return fmt.Errorf("analysis is missing required field %q", field)
	}
	return nil
}
