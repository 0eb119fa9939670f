package tree

import (
	"fmt"
	"slices"
	"time"

	"github.com/mattsolo1/grove-metatree/pkg/field"
	"github.com/mattsolo1/grove-metatree/pkg/filter"
	"github.com/mattsolo1/grove-metatree/pkg/models"
)

// Grouper turns a flat item collection into tree levels keyed by an ordered
// list of columns.
type Grouper struct {
	columns     []string
	resolve     func(*models.Item, string) string
	formatLabel func(column, value string) string
	documentURL func(*models.Item) string
}

// Option configures a Grouper.
type Option func(*Grouper)

// WithLabelFormatter sets how a grouped value is shown.
func WithLabelFormatter(fn func(column, value string) string) Option {
	return func(g *Grouper) { g.formatLabel = fn }
}

// WithDocumentURL sets how the openable URL of a document is derived.
func WithDocumentURL(fn func(*models.Item) string) Option {
	return func(g *Grouper) { g.documentURL = fn }
}

// NewGrouper keeps the non-empty columns in order, at most MaxLevels.
func NewGrouper(columns []string, opts ...Option) *Grouper {
	g := &Grouper{
		columns:     NormalizeColumns(columns),
		resolve:     field.Resolve,
		formatLabel: DefaultLabel,
		documentURL: func(it *models.Item) string { return it.FileRef },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NormalizeColumns drops empty names and truncates to MaxLevels.
func NormalizeColumns(columns []string) []string {
	out := make([]string, 0, MaxLevels)
	for _, c := range columns {
		if c == "" {
			continue
		}
		out = append(out, c)
		if len(out) == MaxLevels {
			break
		}
	}
	return out
}

// Columns returns the grouping columns in level order.
func (g *Grouper) Columns() []string {
	return slices.Clone(g.columns)
}

// Resolve normalizes one column of one item with the configured resolver.
func (g *Grouper) Resolve(item *models.Item, column string) string {
	return g.resolve(item, column)
}

// BuildRoot creates the root for a library and materializes the first level.
func (g *Grouper) BuildRoot(items []*models.Item, libraryLabel, libraryKey string) *Node {
	return &Node{
		Key:      libraryKey,
		Label:    libraryLabel,
		Kind:     KindRoot,
		Level:    0,
		Expanded: true,
		Scope:    []filter.Constraint{},
		Children: g.BuildLevel(1, nil, items),
	}
}

// BuildLevel builds the nodes of one level for the items in scope. Past the
// last column it lists documents; otherwise it emits one group per distinct
// non-empty value of that level's column, sorted, with unexpanded children.
func (g *Grouper) BuildLevel(level int, scope []filter.Constraint, items []*models.Item) []*Node {
	if level < 1 || level > len(g.columns) {
		return g.documents(items)
	}

	column := g.columns[level-1]
	seen := make(map[string]struct{})
	var values []string
	for _, it := range items {
		v := g.resolve(it, column)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	slices.Sort(values)

	nodes := make([]*Node, 0, len(values))
	for _, v := range values {
		nodeScope := filter.Append(scope, filter.Constraint{Column: column, Value: v})
		nodes = append(nodes, &Node{
			Key:   GroupKey(column, v, level, filter.Encode(nodeScope)),
			Label: g.formatLabel(column, v),
			Kind:  KindGroup,
			Level: level,
			Scope: nodeScope,
			Group: &Group{Column: column, Value: v},
		})
	}
	return nodes
}

func (g *Grouper) documents(items []*models.Item) []*Node {
	nodes := make([]*Node, 0, len(items))
	for _, it := range items {
		if !it.IsDocument() {
			continue
		}
		nodes = append(nodes, &Node{
			Key:   it.FileRef,
			Label: it.FileLeafRef,
			Kind:  KindDocument,
			Level: LeafLevel,
			Doc:   &Document{URL: g.documentURL(it), ItemID: it.ID},
		})
	}
	return nodes
}

// Scoped returns the items whose normalized values satisfy every constraint.
func (g *Grouper) Scoped(items []*models.Item, scope []filter.Constraint) []*models.Item {
	if len(scope) == 0 {
		return items
	}
	var out []*models.Item
	for _, it := range items {
		if filter.MatchAll(it, scope, g.resolve) {
			out = append(out, it)
		}
	}
	return out
}

// GroupKey composes a key that stays unique when equal values appear under
// different ancestors.
func GroupKey(column, value string, level int, filterQuery string) string {
	return fmt.Sprintf("%s|%s|%d|%s", column, value, level, filterQuery)
}

// DefaultLabel shows timestamps as plain dates and everything else as is.
func DefaultLabel(_ string, value string) string {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(time.DateOnly)
	}
	return value
}
