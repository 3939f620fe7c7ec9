package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nebulus-dev/gantry/pkg/dom"
	"github.com/nebulus-dev/gantry/pkg/render"
)

const testDebounce = 10 * time.Millisecond

func newBoxDoc() *dom.Document {
	return dom.NewDocumentWithRoot(dom.El("body", nil,
		dom.El("div", dom.Props{"id": "search"}),
	))
}

// recordingSearcher counts queries and returns a fixed response.
type recordingSearcher struct {
	mu      sync.Mutex
	queries []string
	results []Result
	err     error
}

func (s *recordingSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func (s *recordingSearcher) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *recordingSearcher) lastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return ""
	}
	return s.queries[len(s.queries)-1]
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

func TestDebounceCoalescesKeystrokes(t *testing.T) {
	searcher := &recordingSearcher{}
	box := NewBox(newBoxDoc(), "search", searcher, WithDebounce(testDebounce))

	// Three changes inside one debounce window.
	box.Input("t")
	box.Input("te")
	box.Input("tes")

	if !waitFor(t, time.Second, func() bool { return searcher.queryCount() == 1 }) {
		t.Fatalf("expected exactly 1 query, got %d", searcher.queryCount())
	}
	if got := searcher.lastQuery(); got != "tes" {
		t.Errorf("query should carry the final input value, got %q", got)
	}

	// No further queries fire after the window settles.
	time.Sleep(5 * testDebounce)
	if searcher.queryCount() != 1 {
		t.Errorf("late query fired: %d total", searcher.queryCount())
	}
	if box.Pending() {
		t.Error("no timer should remain armed")
	}
}

func TestShortQueryClearsWithoutRequest(t *testing.T) {
	searcher := &recordingSearcher{}
	box := NewBox(newBoxDoc(), "search", searcher, WithDebounce(testDebounce))

	box.Input("a")
	time.Sleep(5 * testDebounce)

	if searcher.queryCount() != 0 {
		t.Errorf("length-1 input issued %d queries, expected 0", searcher.queryCount())
	}
	if len(box.Results()) != 0 {
		t.Errorf("expected cleared results, got %d", len(box.Results()))
	}

	// The two-character boundary issues exactly one query.
	box.Input("ab")
	if !waitFor(t, time.Second, func() bool { return searcher.queryCount() == 1 }) {
		t.Fatalf("length-2 input issued %d queries, expected 1", searcher.queryCount())
	}
}

func TestShortInputCancelsPendingQuery(t *testing.T) {
	searcher := &recordingSearcher{}
	box := NewBox(newBoxDoc(), "search", searcher, WithDebounce(testDebounce))

	box.Input("term")
	box.Input("")
	time.Sleep(5 * testDebounce)

	if searcher.queryCount() != 0 {
		t.Errorf("cleared input still issued %d queries", searcher.queryCount())
	}
}

func TestQueryFailureLeavesResultsUnchanged(t *testing.T) {
	searcher := &recordingSearcher{
		results: []Result{{ID: "1", Title: "kept"}},
	}
	box := NewBox(newBoxDoc(), "search", searcher, WithDebounce(testDebounce))

	box.Input("ok")
	if !waitFor(t, time.Second, func() bool { return len(box.Results()) == 1 }) {
		t.Fatal("initial query never populated results")
	}

	searcher.mu.Lock()
	searcher.err = errors.New("backend down")
	searcher.mu.Unlock()

	box.Input("fail")
	if !waitFor(t, time.Second, func() bool { return searcher.queryCount() == 2 }) {
		t.Fatal("second query never issued")
	}
	time.Sleep(2 * testDebounce)

	results := box.Results()
	if len(results) != 1 || results[0].Title != "kept" {
		t.Errorf("failed query should leave prior results, got %+v", results)
	}
}

func TestRenderEscapesUntrustedFields(t *testing.T) {
	searcher := &recordingSearcher{
		results: []Result{{ID: "1", Title: "<img src=x>", Snippet: `<script>alert("x")</script>`}},
	}
	box := NewBox(newBoxDoc(), "search", searcher, WithDebounce(testDebounce))

	box.Input("xx")
	if !waitFor(t, time.Second, func() bool { return len(box.Results()) == 1 }) {
		t.Fatal("query never populated results")
	}

	html := render.ToString(box.Target())
	if strings.Contains(html, "<img") || strings.Contains(html, "<script") {
		t.Errorf("raw markup leaked into rendered output: %s", html)
	}
	if !strings.Contains(html, "&lt;img src=x&gt;") {
		t.Errorf("expected escaped title text in output: %s", html)
	}
}

func TestSearchScenario(t *testing.T) {
	created, _ := time.Parse(time.RFC3339, "2024-03-01T12:00:00Z")
	searcher := &recordingSearcher{
		results: []Result{{ID: "123", Title: "Result 1", Snippet: "text", CreatedAt: created}},
	}
	box := NewBox(newBoxDoc(), "search", searcher, WithDebounce(testDebounce))

	box.Input("te")

	if !waitFor(t, time.Second, func() bool { return len(box.Results()) == 1 }) {
		t.Fatal("query never populated results")
	}

	html := render.ToString(box.Target())
	if !strings.Contains(html, "Result 1") {
		t.Errorf("rendered output missing result title: %s", html)
	}
	items := box.FindAll(".search-result")
	if len(items) != 1 {
		t.Errorf("expected exactly one result item, got %d", len(items))
	}
	if got := items[0].Props["data-id"]; got != "123" {
		t.Errorf("expected data-id 123, got %v", got)
	}
}

// gatedSearcher blocks each query until released, keyed by query text.
type gatedSearcher struct {
	mu      sync.Mutex
	started map[string]bool
	gates   map[string]chan struct{}
}

func newGatedSearcher(queries ...string) *gatedSearcher {
	g := &gatedSearcher{
		started: make(map[string]bool),
		gates:   make(map[string]chan struct{}),
	}
	for _, q := range queries {
		g.gates[q] = make(chan struct{})
	}
	return g
}

func (g *gatedSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	g.mu.Lock()
	g.started[query] = true
	gate := g.gates[query]
	g.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return []Result{{ID: query, Title: query}}, nil
}

func (g *gatedSearcher) hasStarted(query string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.started[query]
}

func (g *gatedSearcher) release(query string) {
	g.mu.Lock()
	gate := g.gates[query]
	g.mu.Unlock()
	close(gate)
}

func TestStaleResponseDiscarded(t *testing.T) {
	searcher := newGatedSearcher("first", "second")
	box := NewBox(newBoxDoc(), "search", searcher, WithDebounce(testDebounce))

	box.Input("first")
	if !waitFor(t, time.Second, func() bool { return searcher.hasStarted("first") }) {
		t.Fatal("first query never started")
	}

	box.Input("second")
	if !waitFor(t, time.Second, func() bool { return searcher.hasStarted("second") }) {
		t.Fatal("second query never started")
	}

	// The newer query completes first.
	searcher.release("second")
	if !waitFor(t, time.Second, func() bool {
		r := box.Results()
		return len(r) == 1 && r[0].ID == "second"
	}) {
		t.Fatalf("second query's results never applied: %+v", box.Results())
	}

	// The older response arrives late and must be dropped.
	searcher.release("first")
	time.Sleep(5 * testDebounce)

	results := box.Results()
	if len(results) != 1 || results[0].ID != "second" {
		t.Errorf("stale response overwrote newer results: %+v", results)
	}
}
