package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattsolo1/grove-metatree/pkg/field"
	"github.com/mattsolo1/grove-metatree/pkg/tree"
)

// ErrNotFound is returned when no record exists for a page key.
var ErrNotFound = errors.New("tree configuration not found")

// Record is the persisted configuration of one tree instance.
type Record struct {
	PageKey      string                      `yaml:"page" json:"pageKey"`
	Library      string                      `yaml:"library" json:"library"`
	LibraryTitle string                      `yaml:"library_title,omitempty" json:"libraryTitle,omitempty"`
	Columns      []string                    `yaml:"columns" json:"columns"`
	ColumnTypes  map[string]field.ColumnType `yaml:"column_types,omitempty" json:"columnTypes,omitempty"`

	// PublishedSnapshot is a JSON array of items captured by "publish". When
	// present it replaces the network fetch.
	PublishedSnapshot string    `yaml:"-" json:"publishedSnapshot,omitempty"`
	UpdatedAt         time.Time `yaml:"-" json:"updatedAt"`
}

// Store loads and saves records by page key.
type Store interface {
	LoadByPageKey(ctx context.Context, key string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
}

// Validate checks the record before it is saved.
func (r *Record) Validate() error {
	if r.PageKey == "" {
		return fmt.Errorf("page key cannot be empty")
	}
	if len(r.Columns) > tree.MaxLevels {
		return fmt.Errorf("at most %d grouping columns are supported, got %d", tree.MaxLevels, len(r.Columns))
	}
	for i, c := range r.Columns {
		if c == "" && i+1 < len(r.Columns) && r.Columns[i+1] != "" {
			return fmt.Errorf("grouping level %d is set while level %d is empty", i+2, i+1)
		}
	}
	if len(r.Columns) > 0 && r.Library == "" {
		return fmt.Errorf("columns require a library")
	}
	for name, ct := range r.ColumnTypes {
		if !field.IsGroupable(ct.Type) {
			return fmt.Errorf("column %s has type %q, which cannot be grouped on (want one of %s)",
				name, ct.Type, strings.Join(field.GroupableTypes, ", "))
		}
	}
	return nil
}

// GroupingColumns returns the configured columns without empty levels.
func (r *Record) GroupingColumns() []string {
	if r == nil {
		return nil
	}
	return tree.NormalizeColumns(r.Columns)
}

// Title returns the label shown on the root node.
func (r *Record) Title() string {
	if r.LibraryTitle != "" {
		return r.LibraryTitle
	}
	return r.Library
}

// Kinds returns the fetch kinds of the configured columns.
func (r *Record) Kinds() field.KindTable {
	return field.NewKindTable(r.ColumnTypes)
}
