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

func newAppStoreServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		assert.Equal(t, "focus timer", r.URL.Query().Get("term"))
		_, _ = w.Write([]byte(`{"apps": [{"id": "app-1", "name": "FocusTime"}, {"id": "app-2", "name": "Other"}]}`))
	})

	mux.HandleFunc("/reviews", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "app-1", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{
			"reviews": [
				{"title": "Love it", "text": "Helps me focus every day", "rating": 5, "userName": "carol"},
				{"text": "Crashes  on   launch", "rating": "1"}
			]
		}`))
	})

	return httptest.NewServer(mux)
}

func TestAppStoreFetchesReviewsOfTopHit(t *testing.T) {
	srv := newAppStoreServer(t)
	defer srv.Close()

	s := NewAppStoreSource(httpx.New(time.Second, 0, 0), srv.URL, "secret")
	items, err := s.Fetch(context.Background(), "focus timer")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Love it", items[0].Title)
	assert.Equal(t, 5, items[0].Rating)
	assert.Equal(t, "carol", items[0].Author)

	assert.Equal(t, "No Title", items[1].Title)
	assert.Equal(t, "Crashes on launch", items[1].Body)
	assert.Equal(t, 1, items[1].Rating)
	assert.Equal(t, "Anonymous", items[1].Author)
}

func TestAppStoreNoMatchingApps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"apps": []}`))
	}))
	defer srv.Close()

	s := NewAppStoreSource(httpx.New(time.Second, 0, 0), srv.URL, "secret")
	_, err := s.Fetch(context.Background(), "focus timer")
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestAppStoreMissingKey(t *testing.T) {
	s := NewAppStoreSource(httpx.New(time.Second, 0, 0), "http://127.0.0.1:0", "")
	_, err := s.Fetch(context.Background(), "focus timer")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
