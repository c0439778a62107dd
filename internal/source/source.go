// Package source implements the upstream content fetchers. Each source turns
// a free-text query into a list of normalized model.SourceItem, absorbing its
// API's response shape and substituting defaults for missing fields.
package source

import (
	"context"
	"errors"
	"strings"

	"github.com/0x0BSoD/insightdash/internal/model"
)

var (
	// ErrEmptyQuery is returned before any network call when the query is
	// blank after trimming.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrMissingCredentials is returned before any network call when the
	// source's API credentials are not configured.
	ErrMissingCredentials = errors.New("API keys not configured")

	// ErrNoItems is returned when the upstream responded but nothing usable
	// came back.
	ErrNoItems = errors.New("no relevant items found")
)

const (
	defaultAuthor = "Anonymous"
	defaultTitle  = "No Title"

	// bodyLimit bounds every normalized item body.
	bodyLimit = 1000
)

// Source is the contract every fetcher satisfies.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query string) ([]model.SourceItem, error)
}

// checkQuery trims the query and rejects blanks.
func checkQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	return query, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
