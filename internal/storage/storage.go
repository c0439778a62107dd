// Package storage holds the sqlx-backed stores: saved searches per user and
// the model-config lookup table that maps an api_name to a completion model.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/0x0BSoD/insightdash/internal/model"
)

// ErrNotFound is returned when a row the caller named does not exist or is
// not theirs.
var ErrNotFound = errors.New("not found")

type SavedSearchStorage struct {
	db *sqlx.DB
}

func NewSavedSearchStorage(db *sqlx.DB) *SavedSearchStorage {
	return &SavedSearchStorage{db: db}
}

type dbSavedSearch struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Query     string         `db:"query"`
	Widgets   pq.StringArray `db:"widgets"`
	CreatedAt time.Time      `db:"created_at"`
}

func (s dbSavedSearch) toModel() model.SavedSearch {
	return model.SavedSearch{
		ID:        s.ID,
		UserID:    s.UserID,
		Query:     s.Query,
		Widgets:   s.Widgets,
		CreatedAt: s.CreatedAt,
	}
}

func (s *SavedSearchStorage) Create(ctx context.Context, search model.SavedSearch) (string, error) {
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_searches (id, user_id, query, widgets, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, search.UserID, search.Query, pq.Array(search.Widgets), time.Now().UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SavedSearchStorage) ListByUser(ctx context.Context, userID string) ([]model.SavedSearch, error) {
	var rows []dbSavedSearch
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, query, widgets, created_at
		 FROM saved_searches
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(r dbSavedSearch, _ int) model.SavedSearch {
		return r.toModel()
	}), nil
}

// Recent returns the newest saved searches across all users, for the digest
// notifier.
func (s *SavedSearchStorage) Recent(ctx context.Context, limit int) ([]model.SavedSearch, error) {
	var rows []dbSavedSearch
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, query, widgets, created_at
		 FROM saved_searches
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(r dbSavedSearch, _ int) model.SavedSearch {
		return r.toModel()
	}), nil
}

func (s *SavedSearchStorage) Delete(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_searches WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ModelConfigStorage resolves completion model names by api_name.
type ModelConfigStorage struct {
	db *sqlx.DB
}

func NewModelConfigStorage(db *sqlx.DB) *ModelConfigStorage {
	return &ModelConfigStorage{db: db}
}

func (s *ModelConfigStorage) ModelFor(ctx context.Context, apiName string) (string, error) {
	var modelName string
	err := s.db.GetContext(ctx, &modelName,
		`SELECT model_name FROM model_configs WHERE api_name = $1`,
		apiName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return modelName, nil
}
