package search

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Index is an in-memory Searcher over a fixed corpus. It backs the
// server's search endpoint and serves as the local backend in tests.
type Index struct {
	mu      sync.RWMutex
	results []Result
}

// NewIndex creates an index seeded with the given corpus.
func NewIndex(corpus ...Result) *Index {
	idx := &Index{}
	idx.Add(corpus...)
	return idx
}

// Add appends records to the corpus.
func (idx *Index) Add(records ...Result) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.results = append(idx.results, records...)
}

// Len reports the corpus size.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.results)
}

// Search returns records whose title or snippet contains the query,
// case-insensitively, newest first.
func (idx *Index) Search(ctx context.Context, query string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := strings.ToLower(query)

	idx.mu.RLock()
	var hits []Result
	for _, r := range idx.results {
		if strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.Snippet), q) {
			hits = append(hits, r)
		}
	}
	idx.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].CreatedAt.After(hits[j].CreatedAt)
	})
	return hits, nil
}
