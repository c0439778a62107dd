package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Search results</title>
    <link>https://feed.example</link>
    <description>query feed</description>
    <item>
      <title>Headphone market grows</title>
      <description>The market  for   headphones keeps growing.</description>
    </item>
    <item>
      <title></title>
      <description>Another entry</description>
    </item>
  </channel>
</rss>`

func TestFeedFetchNormalizesEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "headphones", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	s := NewFeedSource(srv.URL+"/rss/search", time.Second)
	items, err := s.Fetch(context.Background(), "headphones")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Headphone market grows", items[0].Title)
	assert.Equal(t, "The market for headphones keeps growing.", items[0].Body)
	assert.Equal(t, "feed", items[0].Source)

	assert.Equal(t, "No Title", items[1].Title)
	assert.Equal(t, "Another entry", items[1].Body)
}

func TestFeedEmptyQuery(t *testing.T) {
	s := NewFeedSource("http://127.0.0.1:0/rss", time.Second)
	_, err := s.Fetch(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestFeedNoEntries(t *testing.T) {
	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title><link>l</link><description>d</description></channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(empty))
	}))
	defer srv.Close()

	s := NewFeedSource(srv.URL, time.Second)
	_, err := s.Fetch(context.Background(), "headphones")
	assert.ErrorIs(t, err, ErrNoItems)
}
