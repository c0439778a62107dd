package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/insightdash/internal/model"
)

func TestWidgetStartsIdle(t *testing.T) {
	w := NewWidget[string](func(context.Context, string) model.FetchResult[string] {
		return model.Ok("data")
	})
	assert.Equal(t, StateIdle, w.Snapshot().State)
}

func TestWidgetSuccessLifecycle(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	w := NewWidget[string](func(ctx context.Context, query string) model.FetchResult[string] {
		close(started)
		<-release
		return model.Ok("report for " + query)
	})

	done := w.Run(context.Background(), "headphones")

	<-started
	assert.Equal(t, StateLoading, w.Snapshot().State)

	close(release)
	<-done

	snap := w.Snapshot()
	assert.Equal(t, StateSuccess, snap.State)
	assert.Equal(t, "report for headphones", snap.Data)
	assert.Equal(t, "headphones", snap.Query)
	assert.Empty(t, snap.Error)
}

func TestWidgetErrorAndRetry(t *testing.T) {
	attempts := 0
	w := NewWidget[string](func(ctx context.Context, query string) model.FetchResult[string] {
		attempts++
		if attempts == 1 {
			return model.Fail[string]("Request timed out")
		}
		return model.Ok("recovered")
	})

	<-w.Run(context.Background(), "headphones")

	snap := w.Snapshot()
	require.Equal(t, StateError, snap.State)
	assert.Equal(t, "Request timed out", snap.Error)

	<-w.Retry(context.Background())

	snap = w.Snapshot()
	assert.Equal(t, StateSuccess, snap.State)
	assert.Equal(t, "recovered", snap.Data)
	assert.Equal(t, "headphones", snap.Query)
}

func TestWidgetRetryOutsideErrorIsNoOp(t *testing.T) {
	w := NewWidget[string](func(context.Context, string) model.FetchResult[string] {
		return model.Ok("data")
	})
	<-w.Retry(context.Background())
	assert.Equal(t, StateIdle, w.Snapshot().State)
}

// A stale slower response must not overwrite the result of a newer query.
func TestWidgetDiscardsStaleResponse(t *testing.T) {
	releaseA := make(chan struct{})

	w := NewWidget[string](func(ctx context.Context, query string) model.FetchResult[string] {
		if query == "A" {
			select {
			case <-releaseA:
			case <-ctx.Done():
			}
			return model.Ok("report A")
		}
		return model.Ok("report B")
	})

	doneA := w.Run(context.Background(), "A")
	doneB := w.Run(context.Background(), "B")
	<-doneB

	snap := w.Snapshot()
	require.Equal(t, StateSuccess, snap.State)
	require.Equal(t, "report B", snap.Data)

	// Now let A's fetch resolve late; its result must be discarded.
	close(releaseA)
	<-doneA

	snap = w.Snapshot()
	assert.Equal(t, "B", snap.Query)
	assert.Equal(t, "report B", snap.Data)
}

// Starting a new run cancels the superseded fetch's context.
func TestWidgetCancelsSupersededFetch(t *testing.T) {
	cancelled := make(chan struct{})

	w := NewWidget[string](func(ctx context.Context, query string) model.FetchResult[string] {
		if query == "old" {
			select {
			case <-ctx.Done():
				close(cancelled)
			case <-time.After(2 * time.Second):
			}
			return model.Fail[string]("cancelled")
		}
		return model.Ok("new report")
	})

	w.Run(context.Background(), "old")
	<-w.Run(context.Background(), "new")

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}

	assert.Equal(t, "new report", w.Snapshot().Data)
}
