package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/go-shiori/go-readability"
	"github.com/samber/lo"

	"github.com/0x0BSoD/insightdash/internal/model"
	"github.com/0x0BSoD/insightdash/internal/textutil"
)

// expandLimit caps how many feed entries get their permalink fetched for
// full-text extraction; the rest keep the feed's own summary.
const expandLimit = 3

// contextTransport injects a context into every outgoing request so that
// context cancellation and deadlines propagate through the rss library.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// FeedSource builds a search URL for a news RSS feed from the query and
// normalizes its entries. The top entries are expanded to full readable text
// by fetching their permalinks. It needs no credentials.
type FeedSource struct {
	searchURL string
	timeout   time.Duration
}

func NewFeedSource(searchURL string, timeout time.Duration) *FeedSource {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &FeedSource{searchURL: searchURL, timeout: timeout}
}

func (s *FeedSource) Name() string { return "feed" }

func (s *FeedSource) Fetch(ctx context.Context, query string) ([]model.SourceItem, error) {
	query, err := checkQuery(query)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Transport: contextTransport{ctx: ctx, base: http.DefaultTransport},
		Timeout:   s.timeout,
	}

	feedURL := fmt.Sprintf("%s?q=%s", s.searchURL, url.QueryEscape(query))
	feed, err := rss.FetchByClient(feedURL, client)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	if len(feed.Items) == 0 {
		return nil, ErrNoItems
	}

	now := time.Now().UTC()
	items := lo.Map(feed.Items, func(entry *rss.Item, i int) model.SourceItem {
		body := entry.Summary
		if c := entry.Content; c != "" {
			body = c
		}
		if i < expandLimit {
			if text, err := s.extractText(client, entry.Link); err == nil && text != "" {
				body = text
			}
		}
		return model.SourceItem{
			Title:     orDefault(entry.Title, defaultTitle),
			Body:      textutil.Truncate(textutil.Collapse(body), bodyLimit),
			Author:    defaultAuthor,
			Permalink: entry.Link,
			Source:    s.Name(),
			FetchedAt: now,
		}
	})

	return items, nil
}

// extractText pulls the readable article body from a permalink.
func (s *FeedSource) extractText(client *http.Client, link string) (string, error) {
	if link == "" {
		return "", nil
	}

	resp, err := client.Get(link)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := readability.FromReader(resp.Body, nil)
	if err != nil {
		return "", err
	}
	return doc.TextContent, nil
}
