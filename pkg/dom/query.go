package dom

import "strings"

// matchesSelector reports whether the node matches a simple selector:
// "#id", ".class", or a bare tag name. Text nodes never match.
func (n *Node) matchesSelector(selector string) bool {
	if n == nil || n.Kind != KindElement || selector == "" {
		return false
	}
	switch {
	case strings.HasPrefix(selector, "#"):
		return n.ID() == selector[1:]
	case strings.HasPrefix(selector, "."):
		return n.hasClass(selector[1:])
	default:
		return n.Tag == selector
	}
}

// Find returns the first descendant matching the selector, or nil. The
// receiver itself is not considered; queries are scoped strictly to the
// subtree below it.
func (n *Node) Find(selector string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.matchesSelector(selector) {
			return c
		}
		if found := c.Find(selector); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant matching the selector, in document
// order. Returns nil when nothing matches.
func (n *Node) FindAll(selector string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.matchesSelector(selector) {
			out = append(out, c)
		}
		out = append(out, c.FindAll(selector)...)
	}
	return out
}
