package tree

// ToggleExpansion flips Expanded on the node with the given key. Nodes on the
// path to the match are copied; every other subtree is shared with the input.
// An unknown key returns the input unchanged.
func ToggleExpansion(root *Node, key string) *Node {
	out, _ := rewrite(root, key, func(n *Node) *Node {
		c := n.shallowCopy()
		c.Expanded = !c.Expanded
		return c
	})
	return out
}

// AttachChildren replaces the children of the node with the given key. A key
// that no longer exists is not an error: the input is returned unchanged.
func AttachChildren(root *Node, parentKey string, children []*Node) *Node {
	if children == nil {
		children = []*Node{}
	}
	out, _ := rewrite(root, parentKey, func(n *Node) *Node {
		c := n.shallowCopy()
		c.Children = children
		return c
	})
	return out
}

// rewrite applies fn to the first node (pre-order) whose key matches and
// rebuilds its ancestors.
func rewrite(n *Node, key string, fn func(*Node) *Node) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	if n.Key == key {
		return fn(n), true
	}
	for i, child := range n.Children {
		replaced, ok := rewrite(child, key, fn)
		if !ok {
			continue
		}
		c := n.shallowCopy()
		c.Children = make([]*Node, len(n.Children))
		copy(c.Children, n.Children)
		c.Children[i] = replaced
		return c, true
	}
	return n, false
}

// FindByKey returns the first node in pre-order whose key matches.
func FindByKey(root *Node, key string) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	if root.Key == key {
		return root, true
	}
	for _, child := range root.Children {
		if n, ok := FindByKey(child, key); ok {
			return n, true
		}
	}
	return nil, false
}

// FindPath returns the chain from the root to the node with the given key,
// both ends included.
func FindPath(root *Node, key string) ([]*Node, bool) {
	if root == nil {
		return nil, false
	}
	if root.Key == key {
		return []*Node{root}, true
	}
	for _, child := range root.Children {
		if rest, ok := FindPath(child, key); ok {
			return append([]*Node{root}, rest...), true
		}
	}
	return nil, false
}

// Walk visits every materialized node in pre-order with its depth. Returning
// false from fn skips the node's children.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	walk(root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// VisibleNode is one row of the flattened, expanded tree.
type VisibleNode struct {
	Node  *Node
	Depth int
}

// Visible flattens the nodes a reader can currently see: the root and the
// children of every expanded node.
func Visible(root *Node) []VisibleNode {
	var out []VisibleNode
	Walk(root, func(n *Node, depth int) bool {
		out = append(out, VisibleNode{Node: n, Depth: depth})
		return n.Expanded
	})
	return out
}
