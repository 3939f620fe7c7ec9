// Package dom provides the mutable node tree Gantry components render
// into. It stands in for a browser DOM: a Document owns a tree of nodes,
// nodes are addressable by id, and queries are scoped to a subtree.
package dom

import (
	"fmt"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <li>, etc.
	KindText                // Plain text node
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Props holds element attributes.
type Props map[string]any

// Node is one node in the output tree.
type Node struct {
	Kind     Kind    // Node type
	Tag      string  // Element tag name (e.g., "div")
	Props    Props   // Attributes
	Children []*Node // Child nodes
	Text     string  // For KindText
}

// El creates an element node. Children may be *Node, []*Node, or string
// (wrapped as a text node); nil entries are skipped.
func El(tag string, props Props, children ...any) *Node {
	node := &Node{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
	}
	node.Append(children...)
	return node
}

// TextNode creates a text node.
func TextNode(content string) *Node {
	return &Node{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return TextNode(fmt.Sprintf(format, args...))
}

// Append adds children to the node, skipping nils and wrapping strings.
func (n *Node) Append(children ...any) {
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *Node:
			if v != nil {
				n.Children = append(n.Children, v)
			}
		case []*Node:
			for _, c := range v {
				if c != nil {
					n.Children = append(n.Children, c)
				}
			}
		case string:
			n.Children = append(n.Children, TextNode(v))
		}
	}
}

// ReplaceChildren discards the node's subtree and installs the given
// children in its place. This is the full-rebuild render path: no
// diffing, every render recreates the subtree.
func (n *Node) ReplaceChildren(children ...any) {
	n.Children = n.Children[:0]
	n.Append(children...)
}

// ID returns the node's id attribute, if set.
func (n *Node) ID() string {
	if n == nil || n.Props == nil {
		return ""
	}
	if id, ok := n.Props["id"].(string); ok {
		return id
	}
	return ""
}

// TextContent returns the concatenated text of the node's subtree.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Kind == KindText {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// hasClass reports whether the node's class attribute contains name.
func (n *Node) hasClass(name string) bool {
	if n.Props == nil {
		return false
	}
	cls, ok := n.Props["class"].(string)
	if !ok {
		return false
	}
	for _, c := range strings.Fields(cls) {
		if c == name {
			return true
		}
	}
	return false
}
