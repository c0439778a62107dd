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

// NewsSource queries a news-search API authenticated with a bearer token.
type NewsSource struct {
	client  *httpx.Client
	baseURL string
	token   string
}

func NewNewsSource(client *httpx.Client, baseURL, token string) *NewsSource {
	return &NewsSource{client: client, baseURL: baseURL, token: token}
}

func (s *NewsSource) Name() string { return "news" }

type newsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	URL         string `json:"url"`
}

type newsResponse struct {
	Articles []newsArticle `json:"articles"`
}

func (s *NewsSource) Fetch(ctx context.Context, query string) ([]model.SourceItem, error) {
	query, err := checkQuery(query)
	if err != nil {
		return nil, err
	}
	if s.token == "" {
		return nil, ErrMissingCredentials
	}

	endpoint := fmt.Sprintf("%s/v2/everything?q=%s&sortBy=relevancy&pageSize=20",
		s.baseURL, url.QueryEscape(query))

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token)

	var resp newsResponse
	if err := s.client.GetJSON(ctx, endpoint, header, &resp); err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}

	if len(resp.Articles) == 0 {
		return nil, ErrNoItems
	}

	now := time.Now().UTC()
	return lo.Map(resp.Articles, func(a newsArticle, _ int) model.SourceItem {
		body := a.Content
		if body == "" {
			body = a.Description
		}
		return model.SourceItem{
			Title:     orDefault(a.Title, defaultTitle),
			Body:      textutil.Truncate(textutil.Collapse(body), bodyLimit),
			Author:    orDefault(a.Author, defaultAuthor),
			Permalink: a.URL,
			Source:    s.Name(),
			FetchedAt: now,
		}
	}), nil
}
