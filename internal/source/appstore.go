package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/lo"

	"github.com/0x0BSoD/insightdash/internal/httpx"
	"github.com/0x0BSoD/insightdash/internal/model"
	"github.com/0x0BSoD/insightdash/internal/textutil"
)

// AppStoreSource searches an app-store scraper API for apps matching the
// query and pulls the reviews of the top hit. Authentication is a key header.
type AppStoreSource struct {
	client  *httpx.Client
	baseURL string
	apiKey  string
}

func NewAppStoreSource(client *httpx.Client, baseURL, apiKey string) *AppStoreSource {
	return &AppStoreSource{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (s *AppStoreSource) Name() string { return "appstore" }

type appHit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type appSearchResponse struct {
	Apps []appHit `json:"apps"`
}

type appReview struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Rating   any    `json:"rating"`
	UserName string `json:"userName"`
	URL      string `json:"url"`
}

type appReviewsResponse struct {
	Reviews []appReview `json:"reviews"`
}

func (s *AppStoreSource) Fetch(ctx context.Context, query string) ([]model.SourceItem, error) {
	query, err := checkQuery(query)
	if err != nil {
		return nil, err
	}
	if s.apiKey == "" {
		return nil, ErrMissingCredentials
	}

	header := http.Header{}
	header.Set("X-API-Key", s.apiKey)

	var search appSearchResponse
	searchURL := fmt.Sprintf("%s/search?term=%s&limit=5", s.baseURL, url.QueryEscape(query))
	if err := s.client.GetJSON(ctx, searchURL, header, &search); err != nil {
		return nil, fmt.Errorf("app search: %w", err)
	}
	if len(search.Apps) == 0 {
		return nil, ErrNoItems
	}

	app := search.Apps[0]
	var reviews appReviewsResponse
	reviewsURL := fmt.Sprintf("%s/reviews?id=%s&sort=recent", s.baseURL, url.QueryEscape(app.ID))
	if err := s.client.GetJSON(ctx, reviewsURL, header, &reviews); err != nil {
		return nil, fmt.Errorf("app reviews for %s: %w", app.Name, err)
	}
	if len(reviews.Reviews) == 0 {
		return nil, ErrNoItems
	}

	now := time.Now().UTC()
	return lo.Map(reviews.Reviews, func(r appReview, _ int) model.SourceItem {
		return model.SourceItem{
			Title:     orDefault(r.Title, defaultTitle),
			Body:      textutil.Truncate(textutil.Collapse(r.Text), bodyLimit),
			Author:    orDefault(r.UserName, defaultAuthor),
			Rating:    textutil.CoerceCount(r.Rating),
			Permalink: r.URL,
			Source:    s.Name(),
			FetchedAt: now,
		}
	}), nil
}
