package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/insightdash/internal/httpx"
)

func newVideoServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`{"items": [{"title": "ANC explained", "description": "How noise cancelling works", "channel": "TechChan", "likes": "250", "url": "https://video.example/1"}]}`))
	})

	mux.HandleFunc("/comments/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"comments": [{"text": "Bought these, no regrets", "author": "dave", "likes": 4}, {"text": "Battery died in a month"}]}`))
	})

	return httptest.NewServer(mux)
}

func TestVideoMergesSearchAndComments(t *testing.T) {
	srv := newVideoServer(t)
	defer srv.Close()

	s := NewVideoSource(httpx.New(time.Second, 0, 0), srv.URL, "secret")
	items, err := s.Fetch(context.Background(), "noise cancelling")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "ANC explained", items[0].Title)
	assert.Equal(t, "TechChan", items[0].Author)
	assert.Equal(t, 250, items[0].Likes)

	assert.Equal(t, "Bought these, no regrets", items[1].Body)
	assert.Equal(t, "dave", items[1].Author)
	assert.Equal(t, "Anonymous", items[2].Author)
}

func TestVideoFailsWhenEitherFetchFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": []}`))
	})
	mux.HandleFunc("/comments/search", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewVideoSource(httpx.New(time.Second, 0, 0), srv.URL, "secret")
	_, err := s.Fetch(context.Background(), "noise cancelling")

	var statusErr *httpx.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
}

func TestVideoNoItemsAnywhere(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [], "comments": []}`))
	}))
	defer srv.Close()

	s := NewVideoSource(httpx.New(time.Second, 0, 0), srv.URL, "secret")
	_, err := s.Fetch(context.Background(), "noise cancelling")
	assert.ErrorIs(t, err, ErrNoItems)
}
