package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/0x0BSoD/insightdash/internal/httpx"
	"github.com/0x0BSoD/insightdash/internal/model"
	"github.com/0x0BSoD/insightdash/internal/textutil"
)

// SocialSource queries a link-aggregator search API that authenticates with
// OAuth2 client credentials. The token is exchanged on every fetch; the
// upstream grants are short-lived and a dashboard fetch is rare enough that
// caching buys nothing.
type SocialSource struct {
	client       *httpx.Client
	apiURL       string
	tokenURL     string
	clientID     string
	clientSecret string
	userAgent    string
	communities  []string
}

func NewSocialSource(client *httpx.Client, apiURL, tokenURL, clientID, clientSecret, userAgent string, communities []string) *SocialSource {
	return &SocialSource{
		client:       client,
		apiURL:       apiURL,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		communities:  communities,
	}
}

func (s *SocialSource) Name() string { return "social" }

type socialPost struct {
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
	Ups         any     `json:"ups"`
	NumComments any     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	Permalink   string  `json:"permalink"`
}

type socialListing struct {
	Data struct {
		Children []struct {
			Data socialPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (s *SocialSource) Fetch(ctx context.Context, query string) ([]model.SourceItem, error) {
	query, err := checkQuery(query)
	if err != nil {
		return nil, err
	}
	if s.clientID == "" || s.clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	token, err := s.exchangeToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("social auth: %w", err)
	}

	var items []model.SourceItem
	for _, community := range s.communities {
		posts, err := s.searchCommunity(ctx, token, community, query)
		if err != nil {
			// A failed sub-community just loses its items. A timeout,
			// though, means the whole fetch has run out of time.
			if errors.Is(err, httpx.ErrTimeout) {
				return nil, err
			}
			log.Printf("[ERROR] failed to search community %s: %v", community, err)
			continue
		}
		items = append(items, posts...)
	}

	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

func (s *SocialSource) exchangeToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	header := http.Header{}
	header.Set("Authorization", "Basic "+basicAuth(s.clientID, s.clientSecret))
	header.Set("User-Agent", s.userAgent)

	var resp tokenResponse
	if err := s.client.PostFormJSON(ctx, s.tokenURL, header, form, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("no access token in response")
	}
	return resp.AccessToken, nil
}

func basicAuth(id, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(id + ":" + secret))
}

func (s *SocialSource) searchCommunity(ctx context.Context, token, community, query string) ([]model.SourceItem, error) {
	endpoint := fmt.Sprintf("%s/r/%s/search.json?q=%s&restrict_sr=1&sort=relevance&limit=10",
		s.apiURL, url.PathEscape(community), url.QueryEscape(query))

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("User-Agent", s.userAgent)

	var listing socialListing
	if err := s.client.GetJSON(ctx, endpoint, header, &listing); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]model.SourceItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		body := p.SelfText
		if body == "" {
			body = p.Title
		}
		items = append(items, model.SourceItem{
			Title:       orDefault(p.Title, defaultTitle),
			Body:        textutil.Truncate(textutil.Collapse(body), bodyLimit),
			Author:      orDefault(p.Author, defaultAuthor),
			Upvotes:     textutil.CoerceCount(p.Ups),
			Comments:    textutil.CoerceCount(p.NumComments),
			UpvoteRatio: p.UpvoteRatio,
			Permalink:   p.Permalink,
			Source:      s.Name(),
			FetchedAt:   now,
		})
	}
	return items, nil
}
