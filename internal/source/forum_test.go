package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/insightdash/internal/httpx"
)

const forumPayload = `{
	"results": [
		{"question": "Why do my headphones crackle?", "answer": "Usually a  loose   jack.", "author": "alice", "upvotes": 12, "comments": "3", "url": "https://forum.example/q/1"},
		{"answer": "No idea honestly", "upvotes": "not-a-number"}
	]
}`

func newForumServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forumPayload))
	}))
}

func TestForumFetchNormalizes(t *testing.T) {
	srv := newForumServer(t, nil)
	defer srv.Close()

	s := NewForumSource(httpx.New(time.Second, 0, 0), srv.URL, "secret")
	items, err := s.Fetch(context.Background(), "headphones")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Why do my headphones crackle?", items[0].Title)
	assert.Equal(t, "Usually a loose jack.", items[0].Body)
	assert.Equal(t, "alice", items[0].Author)
	assert.Equal(t, 12, items[0].Upvotes)
	assert.Equal(t, 3, items[0].Comments)
	assert.Equal(t, "https://forum.example/q/1", items[0].Permalink)
	assert.Equal(t, "forum", items[0].Source)

	// Missing fields get defaults; unparseable counters coerce to zero.
	assert.Equal(t, "No Title", items[1].Title)
	assert.Equal(t, "Anonymous", items[1].Author)
	assert.Equal(t, 0, items[1].Upvotes)
}

func TestForumFetchIsDeterministic(t *testing.T) {
	srv := newForumServer(t, nil)
	defer srv.Close()

	s := NewForumSource(httpx.New(time.Second, 0, 0), srv.URL, "secret")

	first, err := s.Fetch(context.Background(), "headphones")
	require.NoError(t, err)
	second, err := s.Fetch(context.Background(), "headphones")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		second[i].FetchedAt = first[i].FetchedAt
	}
	assert.Equal(t, first, second)
}

func TestForumMissingKeyMakesNoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	srv := newForumServer(t, &calls)
	defer srv.Close()

	s := NewForumSource(httpx.New(time.Second, 0, 0), srv.URL, "")
	_, err := s.Fetch(context.Background(), "headphones")

	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.EqualError(t, err, "API keys not configured")
	assert.Equal(t, int32(0), calls.Load())
}

func TestForumEmptyQueryMakesNoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	srv := newForumServer(t, &calls)
	defer srv.Close()

	s := NewForumSource(httpx.New(time.Second, 0, 0), srv.URL, "secret")
	_, err := s.Fetch(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, int32(0), calls.Load())
}

func TestForumTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	s := NewForumSource(httpx.New(50*time.Millisecond, 0, 0), srv.URL, "secret")
	_, err := s.Fetch(context.Background(), "headphones")

	assert.ErrorIs(t, err, httpx.ErrTimeout)
}

func TestForumUpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewForumSource(httpx.New(time.Second, 0, 0), srv.URL, "secret")
	_, err := s.Fetch(context.Background(), "headphones")

	var statusErr *httpx.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
}

func TestForumNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	s := NewForumSource(httpx.New(time.Second, 0, 0), srv.URL, "secret")
	_, err := s.Fetch(context.Background(), "headphones")

	assert.ErrorIs(t, err, ErrNoItems)
}
