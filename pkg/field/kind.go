package field

import (
	"slices"
	"strings"
)

// Column types as reported by the host platform.
const (
	TypeText            = "Text"
	TypeNote            = "Note"
	TypeNumber          = "Number"
	TypeInteger         = "Integer"
	TypeDateTime        = "DateTime"
	TypeBoolean         = "Boolean"
	TypeChoice          = "Choice"
	TypeMultiChoice     = "MultiChoice"
	TypeLookup          = "Lookup"
	TypeLookupMulti     = "LookupMulti"
	TypeUser            = "User"
	TypeUserMulti       = "UserMulti"
	TypeManagedMetadata = "ManagedMetadata"
	TypeTaxonomyMulti   = "TaxonomyFieldTypeMulti"
)

// GroupableTypes lists the column types a grouping column may have.
var GroupableTypes = []string{
	TypeText, TypeNote, TypeNumber, TypeInteger, TypeDateTime, TypeBoolean,
	TypeChoice, TypeMultiChoice, TypeLookup, TypeLookupMulti, TypeUser,
	TypeUserMulti, TypeManagedMetadata, TypeTaxonomyMulti,
}

// IsGroupable reports whether columns of type t can be grouped on. The
// empty type stands for a plain value column.
func IsGroupable(t string) bool {
	return t == "" || slices.Contains(GroupableTypes, t)
}

// BaseSelect are the columns every fetch projects regardless of grouping.
var BaseSelect = []string{"Id", "Title", "FileRef", "FileLeafRef", "FSObjType", "ContentTypeId"}

// Kind tells the fetcher how a column has to be requested so that the
// normalizer sees a resolvable shape.
type Kind struct {
	// Select is the projected column name, e.g. "Dept/Title".
	Select string
	// Expand is the column that has to be expanded, empty for plain columns.
	Expand string
}

// NeedsExpand reports whether the column is a navigation property.
func (k Kind) NeedsExpand() bool { return k.Expand != "" }

// KindResolver maps a column internal name to its fetch kind.
type KindResolver interface {
	Kind(column string) Kind
}

// ColumnType is the configured type information for one column.
type ColumnType struct {
	Type        string `yaml:"type" json:"type" mapstructure:"type"`
	LookupField string `yaml:"lookup_field,omitempty" json:"lookupField,omitempty" mapstructure:"lookup_field"`
}

// KindTable is a table-driven KindResolver built from configured column
// types. Columns missing from the table are requested as plain values.
type KindTable map[string]Kind

// Kind implements KindResolver.
func (t KindTable) Kind(column string) Kind {
	if k, ok := t[column]; ok {
		return k
	}
	return Kind{Select: column}
}

// NewKindTable derives fetch kinds from column types. Lookup and person
// columns are expanded and projected through their display field; managed
// metadata is fetched as the raw term object.
func NewKindTable(types map[string]ColumnType) KindTable {
	t := make(KindTable, len(types))
	for name, ct := range types {
		t[name] = kindFor(name, ct)
	}
	return t
}

func kindFor(name string, ct ColumnType) Kind {
	switch ct.Type {
	case TypeLookup, TypeLookupMulti:
		lf := ct.LookupField
		if lf == "" {
			lf = "Title"
		}
		return Kind{Select: name + "/" + lf, Expand: name}
	case TypeUser, TypeUserMulti:
		return Kind{Select: name + "/Title", Expand: name}
	default:
		return Kind{Select: name}
	}
}

// Projection returns the select and expand lists for a fetch grouping by
// columns. The lists are deduplicated and keep first-seen order.
func Projection(columns []string, r KindResolver) (selects, expands []string) {
	selects = append(selects, BaseSelect...)
	for _, c := range columns {
		if c == "" {
			continue
		}
		k := r.Kind(c)
		if k.Select != "" && !slices.Contains(selects, k.Select) {
			selects = append(selects, k.Select)
		}
		if k.NeedsExpand() && !slices.Contains(expands, k.Expand) {
			expands = append(expands, k.Expand)
		}
	}
	return selects, expands
}

// CorrectInternalName strips the "0" / "_0" suffix the platform appends to
// the hidden text companion of lookup and managed metadata columns.
func CorrectInternalName(name, columnType string) string {
	switch columnType {
	case TypeLookup, TypeManagedMetadata, TypeTaxonomyMulti:
	default:
		return name
	}
	if strings.HasSuffix(name, "_0") {
		return strings.TrimSuffix(name, "_0")
	}
	if strings.HasSuffix(name, "0") {
		return strings.TrimSuffix(name, "0")
	}
	return name
}
