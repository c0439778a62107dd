package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/0x0BSoD/insightdash/internal/httpx"
	"github.com/0x0BSoD/insightdash/internal/model"
	"github.com/0x0BSoD/insightdash/internal/textutil"
)

// VideoSource queries a video-platform scraper API. Video search and comment
// search are independent, so the two requests run in parallel and their
// results are merged.
type VideoSource struct {
	client  *httpx.Client
	baseURL string
	apiKey  string
}

func NewVideoSource(client *httpx.Client, baseURL, apiKey string) *VideoSource {
	return &VideoSource{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (s *VideoSource) Name() string { return "video" }

type videoHit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Channel     string `json:"channel"`
	Views       any    `json:"views"`
	Likes       any    `json:"likes"`
	URL         string `json:"url"`
}

type videoSearchResponse struct {
	Items []videoHit `json:"items"`
}

type videoComment struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Likes  any    `json:"likes"`
}

type videoCommentsResponse struct {
	Comments []videoComment `json:"comments"`
}

func (s *VideoSource) Fetch(ctx context.Context, query string) ([]model.SourceItem, error) {
	query, err := checkQuery(query)
	if err != nil {
		return nil, err
	}
	if s.apiKey == "" {
		return nil, ErrMissingCredentials
	}

	header := http.Header{}
	header.Set("X-API-Key", s.apiKey)

	var (
		search   videoSearchResponse
		comments videoCommentsResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		endpoint := fmt.Sprintf("%s/search?q=%s&limit=10", s.baseURL, url.QueryEscape(query))
		if err := s.client.GetJSON(gctx, endpoint, header, &search); err != nil {
			return fmt.Errorf("video search: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		endpoint := fmt.Sprintf("%s/comments/search?q=%s&limit=20", s.baseURL, url.QueryEscape(query))
		if err := s.client.GetJSON(gctx, endpoint, header, &comments); err != nil {
			return fmt.Errorf("comment search: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	items := lo.Map(search.Items, func(v videoHit, _ int) model.SourceItem {
		return model.SourceItem{
			Title:     orDefault(v.Title, defaultTitle),
			Body:      textutil.Truncate(textutil.Collapse(v.Description), bodyLimit),
			Author:    orDefault(v.Channel, defaultAuthor),
			Likes:     textutil.CoerceCount(v.Likes),
			Permalink: v.URL,
			Source:    s.Name(),
			FetchedAt: now,
		}
	})

	items = append(items, lo.Map(comments.Comments, func(c videoComment, _ int) model.SourceItem {
		return model.SourceItem{
			Title:     defaultTitle,
			Body:      textutil.Truncate(textutil.Collapse(c.Text), bodyLimit),
			Author:    orDefault(c.Author, defaultAuthor),
			Likes:     textutil.CoerceCount(c.Likes),
			Source:    s.Name(),
			FetchedAt: now,
		}
	})...)

	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}
