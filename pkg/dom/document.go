package dom

// Document owns the root of an output tree. It is the lookup surface
// components bind against.
type Document struct {
	root *Node
}

// NewDocument creates a document with an empty body element as its root.
func NewDocument() *Document {
	return &Document{root: El("body", nil)}
}

// NewDocumentWithRoot creates a document around an existing tree.
func NewDocumentWithRoot(root *Node) *Document {
	if root == nil {
		root = El("body", nil)
	}
	return &Document{root: root}
}

// Root returns the document's root element.
func (d *Document) Root() *Node {
	return d.root
}

// GetByID returns the first node in the document whose id attribute
// matches, or nil when no such node exists.
func (d *Document) GetByID(id string) *Node {
	if d == nil || id == "" {
		return nil
	}
	return findByID(d.root, id)
}

func findByID(n *Node, id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID() == id {
		return n
	}
	for _, c := range n.Children {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
