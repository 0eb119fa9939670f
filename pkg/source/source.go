// Package source fetches the flat item collection of a library.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"

	"github.com/mattsolo1/grove-metatree/pkg/models"
)

// ErrLibraryNotFound is returned when the library cannot be resolved.
var ErrLibraryNotFound = errors.New("library not found")

// Query describes one fetch: which library, which columns to project and
// which navigation columns to expand.
type Query struct {
	Library string
	Select  []string
	Expand  []string
}

// Fetcher returns every item of a library in one call. Paging, if any, is
// the fetcher's concern.
type Fetcher interface {
	FetchItems(ctx context.Context, q Query) ([]*models.Item, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, q Query) ([]*models.Item, error)

// FetchItems implements Fetcher.
func (f FetcherFunc) FetchItems(ctx context.Context, q Query) ([]*models.Item, error) {
	return f(ctx, q)
}

// typedColumns are decoded into the Item struct; everything else stays in
// Fields.
var typedColumns = map[string]bool{
	"Id": true, "ID": true, "FileRef": true, "FileLeafRef": true,
	"ContentTypeId": true, "FSObjType": true,
	"FieldValuesAsText": true,
}

// DecodeRow turns one untyped row into an Item. Typed columns are decoded
// with weak typing because sources disagree on whether FSObjType and Id are
// numbers or strings.
func DecodeRow(row map[string]any) (*models.Item, error) {
	item := &models.Item{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           item,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	typed := make(map[string]any, len(typedColumns))
	for k, v := range row {
		if typedColumns[k] && k != "FieldValuesAsText" {
			if k == "ID" {
				k = "Id"
			}
			typed[k] = v
		}
	}
	if err := dec.Decode(typed); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}

	item.Fields = make(map[string]any, len(row))
	for k, v := range row {
		if typedColumns[k] || strings.HasPrefix(k, "@odata.") || strings.HasPrefix(k, "odata.") || k == "__metadata" {
			continue
		}
		item.Fields[k] = v
	}
	// Title is typed only when it is plain text; an expanded object stays a
	// field like any other.
	if title, ok := item.Fields["Title"].(string); ok {
		item.Title = title
		delete(item.Fields, "Title")
	}
	if bag, ok := row["FieldValuesAsText"].(map[string]any); ok {
		item.FieldValuesAsText = bag
	}
	return item, nil
}

// DecodeRows decodes a JSON array of rows. Rows may be flat (wire format) or
// already in the Item layout with a "Fields" object.
func DecodeRows(data []byte) ([]*models.Item, error) {
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	items := make([]*models.Item, 0, len(rows))
	for i, row := range rows {
		if nested, ok := row["Fields"].(map[string]any); ok {
			delete(row, "Fields")
			for k, v := range nested {
				if _, exists := row[k]; !exists {
					row[k] = v
				}
			}
		}
		item, err := DecodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// project keeps only the fields whose base name was selected. An empty
// selection keeps everything.
func project(fields map[string]any, selects []string) map[string]any {
	if len(selects) == 0 {
		return fields
	}
	keep := make(map[string]bool, len(selects))
	for _, s := range selects {
		base, _, _ := strings.Cut(s, "/")
		keep[base] = true
	}
	out := make(map[string]any, len(keep))
	for k, v := range fields {
		if keep[k] {
			out[k] = v
		}
	}
	return out
}
