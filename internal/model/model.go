// Package model defines the data structures shared across insightdash: the
// normalized SourceItem fetched from upstream content APIs, the SavedSearch
// record persisted per user, and the FetchResult envelope every fetch
// operation returns instead of surfacing errors past its boundary.
package model

import "time"

// SourceItem is a normalized unit of fetched content. Items are created fresh
// on every fetch and never persisted.
type SourceItem struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Author      string    `json:"author"`
	Upvotes     int       `json:"upvotes,omitempty"`
	Likes       int       `json:"likes,omitempty"`
	Comments    int       `json:"comments,omitempty"`
	Rating      int       `json:"rating,omitempty"`
	UpvoteRatio float64   `json:"upvoteRatio,omitempty"`
	Permalink   string    `json:"permalink,omitempty"`
	Source      string    `json:"source"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// SavedSearch is a user's stored dashboard query together with the widget
// names that were active when it was saved.
type SavedSearch struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Query     string    `json:"query"`
	Widgets   []string  `json:"widgets"`
	CreatedAt time.Time `json:"createdAt"`
}

// FetchResult is the discriminated success/failure envelope returned by every
// fetch operation in the system.
type FetchResult[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Ok[T any](data T) FetchResult[T] {
	return FetchResult[T]{Success: true, Data: data}
}

func Fail[T any](msg string) FetchResult[T] {
	return FetchResult[T]{Success: false, Error: msg}
}
