// Package component provides the base type Gantry UI pieces are built
// on: a local props snapshot bound to an output target in a dom tree,
// re-rendered in full on every props change.
package component

import (
	"log/slog"
	"sync"

	"github.com/nebulus-dev/gantry/internal/errors"
	"github.com/nebulus-dev/gantry/pkg/dom"
	"github.com/nebulus-dev/gantry/pkg/state"
)

// RenderFunc produces the target's new children from the current props.
// The returned nodes replace the target subtree wholesale.
type RenderFunc func(props state.State) []*dom.Node

// Component binds a local props snapshot to an output target. Props
// change only through SetProps; every change triggers a synchronous full
// re-render. A component whose target lookup failed at construction
// renders as a no-op and logs once per attempt.
type Component struct {
	doc      *dom.Document
	targetID string
	target   *dom.Node

	mu    sync.Mutex
	props state.State

	renderFn RenderFunc
	logger   *slog.Logger
}

// Option configures a Component.
type Option func(*Component)

// WithRenderFunc sets the render function. The default is a no-op;
// concrete components override it.
func WithRenderFunc(fn RenderFunc) Option {
	return func(c *Component) {
		c.renderFn = fn
	}
}

// WithLogger sets the logger used for diagnosable conditions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Component) {
		c.logger = logger
	}
}

// New creates a component bound to the element with the given id in doc
// and renders it once with the initial props. A missing target is not
// fatal: the condition is logged with a stable code and every subsequent
// render is a no-op.
func New(doc *dom.Document, targetID string, initial state.State, opts ...Option) *Component {
	c := &Component{
		doc:      doc,
		targetID: targetID,
		props:    initial.Clone(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.target = doc.GetByID(targetID)
	if c.target == nil {
		c.logger.Warn("component target not found",
			"code", errors.CodeTargetNotFound,
			"target", targetID)
		return c
	}

	c.Render()
	return c
}

// Props returns a copy of the current local props. Mutating the returned
// map does not affect the component.
func (c *Component) Props() state.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props.Clone()
}

// SetProps merges partial into the local props one level deep and
// synchronously re-renders. There is no diffing: every call rebuilds the
// target subtree, changed or not.
func (c *Component) SetProps(partial state.State) {
	c.mu.Lock()
	c.props = c.props.Merge(partial)
	c.mu.Unlock()

	c.Render()
}

// Render rebuilds the target's children from the current props. No-op
// when the component has no live target or no render function.
func (c *Component) Render() {
	if c.target == nil {
		c.logger.Debug("render skipped, no live target",
			"code", errors.CodeRenderNoTarget,
			"target", c.targetID)
		return
	}
	if c.renderFn == nil {
		return
	}

	nodes := c.renderFn(c.Props())
	children := make([]any, len(nodes))
	for i, n := range nodes {
		children[i] = n
	}
	c.target.ReplaceChildren(children...)
}

// Mounted reports whether the component found its target.
func (c *Component) Mounted() bool {
	return c.target != nil
}

// Target returns the component's output target, or nil when the lookup
// failed at construction.
func (c *Component) Target() *dom.Node {
	return c.target
}

// Find returns the first node matching the selector within the
// component's own subtree, or nil when there is no live target.
func (c *Component) Find(selector string) *dom.Node {
	if c.target == nil {
		return nil
	}
	return c.target.Find(selector)
}

// FindAll returns every node matching the selector within the
// component's own subtree. Empty when there is no live target.
func (c *Component) FindAll(selector string) []*dom.Node {
	if c.target == nil {
		return nil
	}
	return c.target.FindAll(selector)
}

// BindStore subscribes the component to a global store: every store
// update merges the new snapshot into the component's props and
// re-renders. The returned unsubscribe must be called when the
// component's target is discarded, otherwise the subscription keeps the
// component alive.
func (c *Component) BindStore(store *state.Store) func() {
	return store.Subscribe(func(snapshot state.State) {
		c.SetProps(snapshot)
	})
}
