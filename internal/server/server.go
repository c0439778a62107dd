// Package server exposes the dashboard HTTP API: one report endpoint per
// source, saved-search CRUD, health, and Prometheus metrics. Report endpoints
// always answer 200 with a FetchResult envelope; success or failure lives
// inside the envelope, which is the contract the UI widgets consume.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0x0BSoD/insightdash/internal/dashboard"
	"github.com/0x0BSoD/insightdash/internal/model"
	"github.com/0x0BSoD/insightdash/internal/reporter"
	"github.com/0x0BSoD/insightdash/internal/storage"
)

// ReportRunner executes a source's pipeline and returns its envelope. The
// concrete envelope type differs per source, so the server treats it opaquely.
type ReportRunner func(ctx context.Context, query string) any

// Widget is the server-side widget state: report payloads are held as raw
// JSON since their concrete type differs per source.
type Widget = dashboard.Widget[json.RawMessage]

// SearchStore is the slice of storage the server needs.
type SearchStore interface {
	Create(ctx context.Context, search model.SavedSearch) (string, error)
	ListByUser(ctx context.Context, userID string) ([]model.SavedSearch, error)
	Delete(ctx context.Context, id, userID string) error
}

type Server struct {
	router   chi.Router
	runners  map[string]ReportRunner
	widgets  map[string]*Widget
	searches SearchStore
	reporter *reporter.Reporter
}

func New(runners map[string]ReportRunner, widgets map[string]*Widget, searches SearchStore, rep *reporter.Reporter) *Server {
	s := &Server{
		runners:  runners,
		widgets:  widgets,
		searches: searches,
		reporter: rep,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/api/reports/{source}", s.handleReport)

	r.Route("/api/widgets/{source}", func(r chi.Router) {
		r.Get("/", s.handleWidgetState)
		r.Post("/run", s.handleWidgetRun)
		r.Post("/retry", s.handleWidgetRetry)
	})

	r.Route("/api/searches", func(r chi.Router) {
		r.Get("/", s.handleListSearches)
		r.Post("/", s.handleCreateSearch)
		r.Delete("/{id}", s.handleDeleteSearch)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "source")
	runner, ok := s.runners[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, model.Fail[struct{}]("unknown source: "+name))
		return
	}

	query := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, runner(r.Context(), query))
}

type widgetState struct {
	State string          `json:"state"`
	Query string          `json:"query,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

func (s *Server) widget(w http.ResponseWriter, r *http.Request) (*Widget, bool) {
	name := chi.URLParam(r, "source")
	widget, ok := s.widgets[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, model.Fail[struct{}]("unknown source: "+name))
		return nil, false
	}
	return widget, true
}

func (s *Server) handleWidgetState(w http.ResponseWriter, r *http.Request) {
	widget, ok := s.widget(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshotState(widget))
}

// handleWidgetRun starts an asynchronous fetch for the widget, superseding
// and cancelling any in-flight one. The fetch deliberately outlives the POST:
// its lifecycle belongs to the widget, not to this request.
func (s *Server) handleWidgetRun(w http.ResponseWriter, r *http.Request) {
	widget, ok := s.widget(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	widget.Run(context.Background(), query)
	writeJSON(w, http.StatusAccepted, snapshotState(widget))
}

func (s *Server) handleWidgetRetry(w http.ResponseWriter, r *http.Request) {
	widget, ok := s.widget(w, r)
	if !ok {
		return
	}

	widget.Retry(context.Background())
	writeJSON(w, http.StatusAccepted, snapshotState(widget))
}

func snapshotState(widget *Widget) widgetState {
	snap := widget.Snapshot()
	return widgetState{
		State: snap.State.String(),
		Query: snap.Query,
		Data:  snap.Data,
		Error: snap.Error,
	}
}

type createSearchRequest struct {
	Query   string   `json:"query"`
	Widgets []string `json:"widgets"`
}

func (s *Server) handleCreateSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req createSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.Fail[struct{}]("invalid request body"))
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, model.Fail[struct{}]("query is required"))
		return
	}

	id, err := s.searches.Create(r.Context(), model.SavedSearch{
		UserID:  userID,
		Query:   req.Query,
		Widgets: req.Widgets,
	})
	if err != nil {
		log.Printf("[ERROR] failed to save search: %v", err)
		s.reporter.Notify("failed to save search: " + err.Error())
		writeJSON(w, http.StatusInternalServerError, model.Fail[struct{}]("failed to save search"))
		return
	}

	writeJSON(w, http.StatusCreated, model.Ok(map[string]string{"id": id}))
}

func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	searches, err := s.searches.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] failed to list searches: %v", err)
		writeJSON(w, http.StatusInternalServerError, model.Fail[struct{}]("failed to list searches"))
		return
	}

	writeJSON(w, http.StatusOK, model.Ok(searches))
}

func (s *Server) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	err := s.searches.Delete(r.Context(), chi.URLParam(r, "id"), userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, model.Fail[struct{}]("search not found"))
		return
	}
	if err != nil {
		log.Printf("[ERROR] failed to delete search: %v", err)
		writeJSON(w, http.StatusInternalServerError, model.Fail[struct{}]("failed to delete search"))
		return
	}

	writeJSON(w, http.StatusOK, model.Ok(struct{}{}))
}

// userID reads the authenticated user from the X-User-ID header the fronting
// auth proxy sets. Missing header is a client error.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, model.Fail[struct{}]("X-User-ID header is required"))
		return "", false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] failed to encode response: %v", err)
	}
}
