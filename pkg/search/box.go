package search

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nebulus-dev/gantry/internal/errors"
	"github.com/nebulus-dev/gantry/pkg/component"
	"github.com/nebulus-dev/gantry/pkg/dom"
	"github.com/nebulus-dev/gantry/pkg/state"
)

// Props keys the box renders from.
const (
	PropQuery   = "query"
	PropResults = "results"
)

// Defaults for the debounce window and minimum query length.
const (
	DefaultDebounce       = 300 * time.Millisecond
	DefaultMinQueryLength = 2
	DefaultQueryTimeout   = 10 * time.Second
)

// Box is a search input bound to a Searcher. Keystrokes arrive through
// Input; queries are debounced behind a single pending timer, issued
// with a sequence tag, and stale responses are discarded rather than
// overwriting newer results. Query failures are logged and leave the
// prior results untouched.
type Box struct {
	*component.Component

	searcher  Searcher
	debounce  time.Duration
	minLength int
	timeout   time.Duration
	logger    *slog.Logger

	mu    sync.Mutex
	timer *time.Timer

	// seq tags the latest issued query; responses with an older tag
	// are dropped.
	seq atomic.Uint64
}

// BoxOption configures a Box.
type BoxOption func(*Box)

// WithDebounce sets the quiet window before a query is issued.
func WithDebounce(d time.Duration) BoxOption {
	return func(b *Box) {
		b.debounce = d
	}
}

// WithMinQueryLength sets the minimum rune count that triggers a query.
func WithMinQueryLength(n int) BoxOption {
	return func(b *Box) {
		b.minLength = n
	}
}

// WithQueryTimeout bounds each backend call.
func WithQueryTimeout(d time.Duration) BoxOption {
	return func(b *Box) {
		b.timeout = d
	}
}

// WithBoxLogger sets the logger for query failures and stale drops.
func WithBoxLogger(logger *slog.Logger) BoxOption {
	return func(b *Box) {
		b.logger = logger
	}
}

// NewBox creates a search box mounted at the element with the given id.
func NewBox(doc *dom.Document, targetID string, searcher Searcher, opts ...BoxOption) *Box {
	b := &Box{
		searcher:  searcher,
		debounce:  DefaultDebounce,
		minLength: DefaultMinQueryLength,
		timeout:   DefaultQueryTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.Component = component.New(doc, targetID,
		state.State{PropQuery: "", PropResults: []Result(nil)},
		component.WithRenderFunc(renderResults),
		component.WithLogger(b.logger),
	)
	return b
}

// Input feeds the current text of the search field into the box. Each
// call cancels the prior pending timer, so a burst of keystrokes inside
// the debounce window issues at most one query, for the final value.
// Text shorter than the minimum clears the results without querying.
func (b *Box) Input(text string) {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}

	if len([]rune(text)) < b.minLength {
		// Invalidate any in-flight query so its late response cannot
		// resurrect results the user has already cleared.
		b.seq.Add(1)
		b.mu.Unlock()
		b.SetProps(state.State{PropQuery: text, PropResults: []Result(nil)})
		return
	}

	b.timer = time.AfterFunc(b.debounce, func() {
		b.runQuery(text)
	})
	b.mu.Unlock()
}

// Pending reports whether a debounce timer is currently armed.
func (b *Box) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timer != nil
}

// runQuery issues the query and applies the response unless a newer
// query has been issued in the meantime.
func (b *Box) runQuery(query string) {
	b.mu.Lock()
	b.timer = nil
	b.mu.Unlock()

	tag := b.seq.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	results, err := b.searcher.Search(ctx, query)
	if err != nil {
		b.logger.Error("search query failed",
			"code", errors.CodeSearchFailed,
			"query", query,
			"error", err)
		return
	}

	if b.seq.Load() != tag {
		b.logger.Debug("discarding stale search response",
			"query", query,
			"tag", tag)
		return
	}

	b.SetProps(state.State{PropQuery: query, PropResults: results})
}

// Results returns the currently rendered results.
func (b *Box) Results() []Result {
	results, _ := b.Props()[PropResults].([]Result)
	return results
}

// renderResults builds the result list. Titles and snippets come from
// the backend and are untrusted; they enter the tree as text nodes, so
// serialization escapes them.
func renderResults(props state.State) []*dom.Node {
	results, _ := props[PropResults].([]Result)

	items := make([]*dom.Node, 0, len(results))
	for _, r := range results {
		items = append(items, dom.El("li",
			dom.Props{"class": "search-result", "data-id": r.ID},
			dom.El("span", dom.Props{"class": "result-title"}, r.Title),
			dom.El("span", dom.Props{"class": "result-snippet"}, r.Snippet),
			dom.El("time", dom.Props{"datetime": r.CreatedAt.Format(time.RFC3339)},
				r.CreatedAt.Format("Jan 2, 2006")),
		))
	}

	return []*dom.Node{
		dom.El("ul", dom.Props{"class": "search-results"}, items),
	}
}
