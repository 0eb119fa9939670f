package tree

import (
	"github.com/mattsolo1/grove-metatree/pkg/filter"
)

// LeafLevel is the level every document node carries, past any grouping
// level.
const LeafLevel = 99

// MaxLevels is the maximum number of grouping columns.
const MaxLevels = 3

// Kind categorizes the different kinds of nodes in the tree.
type Kind int

const (
	KindRoot     Kind = iota // the library itself
	KindGroup                // all items sharing one column value
	KindDocument             // one concrete file
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindGroup:
		return "group"
	case KindDocument:
		return "document"
	}
	return "unknown"
}

// Group is the payload of a grouping node.
type Group struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Document is the payload of a document node.
type Document struct {
	URL    string `json:"url"`
	ItemID int    `json:"itemId"`
}

// Node is one entry of the tree. Nodes are values: once built they are never
// modified, and ToggleExpansion / AttachChildren return copies along the
// path to the changed node.
type Node struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Kind     Kind   `json:"kind"`
	Level    int    `json:"level"`
	Expanded bool   `json:"expanded"`

	// Scope is the ordered list of ancestor constraints, this node's own
	// constraint last. Empty for the root, nil for documents.
	Scope []filter.Constraint `json:"scope,omitempty"`

	Group *Group    `json:"group,omitempty"`
	Doc   *Document `json:"doc,omitempty"`

	// Children is nil until the node has been expanded once; an expanded
	// node without children holds an empty, non-nil slice.
	Children []*Node `json:"children"`
}

// IsFolder reports whether the node can be expanded.
func (n *Node) IsFolder() bool {
	return n != nil && n.Kind != KindDocument
}

// Loaded reports whether the children have been materialized.
func (n *Node) Loaded() bool {
	return n != nil && n.Children != nil
}

// FilterQuery renders Scope as a filter expression. It is derived at the
// point of use and never stored.
func (n *Node) FilterQuery() string {
	if n == nil {
		return ""
	}
	return filter.Encode(n.Scope)
}

// Column returns the grouping column, "" for non-group nodes.
func (n *Node) Column() string {
	if n == nil || n.Group == nil {
		return ""
	}
	return n.Group.Column
}

// Value returns the grouped value, "" for non-group nodes.
func (n *Node) Value() string {
	if n == nil || n.Group == nil {
		return ""
	}
	return n.Group.Value
}

// URL returns the document URL, "" for non-document nodes.
func (n *Node) URL() string {
	if n == nil || n.Doc == nil {
		return ""
	}
	return n.Doc.URL
}

func (n *Node) shallowCopy() *Node {
	c := *n
	return &c
}
