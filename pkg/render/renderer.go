// Package render serializes dom trees to HTML. All text and attribute
// values pass through escaping; there is no raw-HTML path, so externally
// supplied text can never introduce live markup.
package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/nebulus-dev/gantry/pkg/dom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	Pretty bool

	// Indent is the string used for each indentation level in pretty
	// mode. Defaults to two spaces if not specified.
	Indent string
}

// Renderer serializes dom.Node trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// ToString renders a node tree to a compact HTML string using a default
// renderer.
func ToString(node *dom.Node) string {
	s, _ := NewRenderer(RendererConfig{}).RenderToString(node)
	return s
}

// RenderToString renders a node tree to a complete HTML string.
func (r *Renderer) RenderToString(node *dom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a node tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *dom.Node) error {
	return r.renderNode(w, node, 0)
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w io.Writer, node *dom.Node, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case dom.KindElement:
		return r.renderElement(w, node, depth)
	case dom.KindText:
		return r.renderText(w, node)
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

// renderElement renders an element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, node *dom.Node, depth int) error {
	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", node.Tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if _, err := w.Write([]byte{'>'}); err != nil {
		return err
	}

	if isVoidElement(node.Tag) {
		if r.config.Pretty {
			w.Write([]byte{'\n'})
		}
		return nil
	}

	if r.config.Pretty && len(node.Children) > 0 {
		w.Write([]byte{'\n'})
	}

	for _, child := range node.Children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}

	if r.config.Pretty && len(node.Children) > 0 {
		r.writeIndent(w, depth)
	}
	if _, err := fmt.Fprintf(w, "</%s>", node.Tag); err != nil {
		return err
	}
	if r.config.Pretty {
		w.Write([]byte{'\n'})
	}
	return nil
}

// renderText writes an escaped text node.
func (r *Renderer) renderText(w io.Writer, node *dom.Node) error {
	_, err := io.WriteString(w, EscapeHTML(node.Text))
	return err
}

// renderAttributes writes the element's attributes in sorted key order
// for deterministic output. Boolean attributes render bare when true and
// are omitted when false; nil values are skipped.
func (r *Renderer) renderAttributes(w io.Writer, node *dom.Node) error {
	if len(node.Props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(node.Props))
	for k := range node.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := node.Props[k].(type) {
		case nil:
			continue
		case bool:
			if v {
				if _, err := fmt.Fprintf(w, " %s", k); err != nil {
					return err
				}
			}
		case string:
			if _, err := fmt.Fprintf(w, ` %s="%s"`, k, EscapeAttr(v)); err != nil {
				return err
			}
		case int:
			if _, err := fmt.Fprintf(w, ` %s="%d"`, k, v); err != nil {
				return err
			}
		case float64:
			if _, err := fmt.Fprintf(w, ` %s="%s"`, k, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintf(w, ` %s="%s"`, k, EscapeAttr(fmt.Sprint(v))); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeIndent writes indentation for the given depth.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "source": true, "track": true,
	"wbr": true,
}

// isVoidElement reports whether the tag is a void element.
func isVoidElement(tag string) bool {
	return voidElements[tag]
}
