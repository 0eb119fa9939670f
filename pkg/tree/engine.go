package tree

import (
	"context"

	"github.com/mattsolo1/grove-metatree/pkg/models"
)

// Engine holds one generation of the tree: the cached flat collection, the
// grouper it was built with and the current root. Expansion filters the
// cached collection; it never fetches.
//
// An Engine is not safe for concurrent use; callers serialize events.
type Engine struct {
	grouper *Grouper
	items   []*models.Item
	root    *Node
}

// NewEngine builds the root for items and returns an engine positioned on it.
func NewEngine(g *Grouper, items []*models.Item, libraryLabel, libraryKey string) *Engine {
	return &Engine{
		grouper: g,
		items:   items,
		root:    g.BuildRoot(items, libraryLabel, libraryKey),
	}
}

// Root returns the current tree.
func (e *Engine) Root() *Node { return e.root }

// Items returns the flat collection the tree was built from.
func (e *Engine) Items() []*models.Item { return e.items }

// Grouper returns the grouper of this generation.
func (e *Engine) Grouper() *Grouper { return e.grouper }

// Expand handles an expand/collapse event on key. Documents and unknown keys
// are ignored. The first expansion of a group materializes its children;
// later toggles keep them.
func (e *Engine) Expand(ctx context.Context, key string) (*Node, error) {
	node, ok := FindByKey(e.root, key)
	if !ok || !node.IsFolder() {
		return e.root, nil
	}

	root := ToggleExpansion(e.root, key)
	e.root = root

	node, _ = FindByKey(root, key)
	if !node.Expanded || node.Loaded() {
		return root, nil
	}

	children := e.grouper.BuildLevel(node.Level+1, node.Scope, e.grouper.Scoped(e.items, node.Scope))
	if err := ctx.Err(); err != nil {
		return root, err
	}
	e.root = AttachChildren(root, key, children)
	return e.root, nil
}

// ExpandAll expands every folder below the root, materializing the whole
// tree.
func (e *Engine) ExpandAll(ctx context.Context) (*Node, error) {
	var pending []string
	Walk(e.root, func(n *Node, _ int) bool {
		if n.IsFolder() && !n.Expanded {
			pending = append(pending, n.Key)
		}
		return true
	})
	for len(pending) > 0 {
		key := pending[0]
		pending = pending[1:]
		if _, err := e.Expand(ctx, key); err != nil {
			return e.root, err
		}
		n, _ := FindByKey(e.root, key)
		for _, c := range n.Children {
			if c.IsFolder() && !c.Expanded {
				pending = append(pending, c.Key)
			}
		}
	}
	return e.root, nil
}

// Select returns the URL to open for a document node. It never changes the
// tree.
func (e *Engine) Select(key string) (string, bool) {
	node, ok := FindByKey(e.root, key)
	if !ok || node.Kind != KindDocument {
		return "", false
	}
	return node.URL(), true
}

// ScopeItems returns the items a node stands for.
func (e *Engine) ScopeItems(key string) []*models.Item {
	node, ok := FindByKey(e.root, key)
	if !ok {
		return nil
	}
	switch node.Kind {
	case KindDocument:
		for _, it := range e.items {
			if it.FileRef == node.Key {
				return []*models.Item{it}
			}
		}
		return nil
	default:
		return e.grouper.Scoped(e.items, node.Scope)
	}
}
