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

// ForumSource queries a forum-answer search API authenticated with a key
// header.
type ForumSource struct {
	client  *httpx.Client
	baseURL string
	apiKey  string
	limit   int
}

func NewForumSource(client *httpx.Client, baseURL, apiKey string) *ForumSource {
	return &ForumSource{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		limit:   20,
	}
}

func (s *ForumSource) Name() string { return "forum" }

type forumAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Author   string `json:"author"`
	Upvotes  any    `json:"upvotes"`
	Comments any    `json:"comments"`
	URL      string `json:"url"`
}

type forumResponse struct {
	Results []forumAnswer `json:"results"`
}

func (s *ForumSource) Fetch(ctx context.Context, query string) ([]model.SourceItem, error) {
	query, err := checkQuery(query)
	if err != nil {
		return nil, err
	}
	if s.apiKey == "" {
		return nil, ErrMissingCredentials
	}

	endpoint := fmt.Sprintf("%s/search?query=%s&limit=%d",
		s.baseURL, url.QueryEscape(query), s.limit)

	header := http.Header{}
	header.Set("X-API-Key", s.apiKey)

	var resp forumResponse
	if err := s.client.GetJSON(ctx, endpoint, header, &resp); err != nil {
		return nil, fmt.Errorf("forum search: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, ErrNoItems
	}

	now := time.Now().UTC()
	return lo.Map(resp.Results, func(a forumAnswer, _ int) model.SourceItem {
		return model.SourceItem{
			Title:     orDefault(a.Question, defaultTitle),
			Body:      textutil.Truncate(textutil.Collapse(a.Answer), bodyLimit),
			Author:    orDefault(a.Author, defaultAuthor),
			Upvotes:   textutil.CoerceCount(a.Upvotes),
			Comments:  textutil.CoerceCount(a.Comments),
			Permalink: a.URL,
			Source:    s.Name(),
			FetchedAt: now,
		}
	}), nil
}
