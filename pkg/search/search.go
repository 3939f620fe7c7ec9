// Package search implements the Gantry search box: a debounced input
// bound to a Searcher backend, rendering escaped results into its
// component target.
package search

import (
	"context"
	"time"
)

// Result is one search hit. Field names follow the backend's wire
// format.
type Result struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet"`
	CreatedAt time.Time `json:"created_at"`
}

// Searcher answers queries. Implementations include the in-memory Index
// and the HTTP client in pkg/server.
type Searcher interface {
	// Search returns hits for the query, newest first.
	Search(ctx context.Context, query string) ([]Result, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string) ([]Result, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, query string) ([]Result, error) {
	return f(ctx, query)
}
