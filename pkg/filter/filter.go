// Package filter encodes the ancestry of a tree node as a flat conjunction
// of equality clauses, e.g. "Dept eq 'Ops' and Year eq '2024'".
//
// The format is the one the document collection accepts for list filtering.
// It is not a general query language: values containing " and " or " eq "
// do not survive Decode.
package filter

import (
	"strings"

	"github.com/mattsolo1/grove-metatree/pkg/models"
)

const (
	andSep = " and "
	eqSep  = " eq "
)

// Constraint is one column = value clause.
type Constraint struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// String renders the clause with the value quoted and escaped.
func (c Constraint) String() string {
	return c.Column + eqSep + quote(c.Value)
}

// Matches reports whether the item's resolved value for the column equals
// the constraint value.
func (c Constraint) Matches(item *models.Item, resolve func(*models.Item, string) string) bool {
	return resolve(item, c.Column) == c.Value
}

// Encode joins the constraints in order. An empty list encodes to "".
func Encode(constraints []Constraint) string {
	if len(constraints) == 0 {
		return ""
	}
	clauses := make([]string, len(constraints))
	for i, c := range constraints {
		clauses[i] = c.String()
	}
	return strings.Join(clauses, andSep)
}

// Decode splits an expression produced by Encode back into its constraints.
// Clauses without an " eq " token are skipped.
func Decode(expr string) []Constraint {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	var out []Constraint
	for _, clause := range strings.Split(expr, andSep) {
		col, val, ok := strings.Cut(clause, eqSep)
		if !ok {
			continue
		}
		out = append(out, Constraint{Column: strings.TrimSpace(col), Value: unquote(val)})
	}
	return out
}

// Append returns a new slice holding scope followed by c. The input is
// never aliased, so sibling nodes cannot observe each other's scope.
func Append(scope []Constraint, c Constraint) []Constraint {
	out := make([]Constraint, len(scope), len(scope)+1)
	copy(out, scope)
	return append(out, c)
}

// MatchAll reports whether the item satisfies every constraint.
func MatchAll(item *models.Item, scope []Constraint, resolve func(*models.Item, string) string) bool {
	for _, c := range scope {
		if !c.Matches(item, resolve) {
			return false
		}
	}
	return true
}

func quote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		v = v[1 : len(v)-1]
	}
	return strings.ReplaceAll(v, "''", "'")
}
