// Package dashboard tracks the per-widget fetch lifecycle:
// idle → loading → success | error, with a manual retry re-entering loading.
// Each run carries a generation token; starting a new run cancels the
// previous fetch's context, and a completion whose generation is no longer
// current is discarded, so a slow stale response can never overwrite the
// result of a newer query.
package dashboard

import (
	"context"
	"sync"

	"github.com/0x0BSoD/insightdash/internal/model"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchFunc resolves a query into a FetchResult envelope. It must honor
// context cancellation.
type FetchFunc[T any] func(ctx context.Context, query string) model.FetchResult[T]

// Snapshot is a consistent view of a widget's state.
type Snapshot[T any] struct {
	State State
	Query string
	Data  T
	Error string
}

type Widget[T any] struct {
	fetch FetchFunc[T]

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State
	query  string
	data   T
	errMsg string
}

func NewWidget[T any](fetch FetchFunc[T]) *Widget[T] {
	return &Widget[T]{fetch: fetch, state: StateIdle}
}

// Run starts a fetch for query, superseding any in-flight one. It returns a
// channel that closes when this particular run has settled (either committed
// or discarded as stale).
func (w *Widget[T]) Run(ctx context.Context, query string) <-chan struct{} {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	if w.cancel != nil {
		w.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.state = StateLoading
	w.query = query
	w.errMsg = ""
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		res := w.fetch(fctx, query)

		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.gen {
			return
		}
		if res.Success {
			w.state = StateSuccess
			w.data = res.Data
		} else {
			w.state = StateError
			w.errMsg = res.Error
		}
	}()
	return done
}

// Retry re-runs the widget's last query. It is only meaningful from the error
// state; elsewhere it is a no-op.
func (w *Widget[T]) Retry(ctx context.Context) <-chan struct{} {
	w.mu.Lock()
	if w.state != StateError {
		w.mu.Unlock()
		done := make(chan struct{})
		close(done)
		return done
	}
	query := w.query
	w.mu.Unlock()

	return w.Run(ctx, query)
}

func (w *Widget[T]) Snapshot() Snapshot[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot[T]{
		State: w.state,
		Query: w.query,
		Data:  w.data,
		Error: w.errMsg,
	}
}
