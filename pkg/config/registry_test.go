package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mattsolo1/grove-metatree/pkg/field"
)

func TestNewRegistry(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	reg, err := NewRegistry(dataDir)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	defer reg.Close()

	if _, err := os.Stat(filepath.Join(dataDir, "trees.db")); os.IsNotExist(err) {
		t.Error("Expected database file to be created")
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	reg, err := NewRegistry(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	defer reg.Close()

	if _, err := reg.LoadByPageKey(ctx, "/pages/home"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	rec := &Record{
		PageKey:      "/pages/home",
		Library:      "/sites/hr/Shared Documents",
		LibraryTitle: "Documents",
		Columns:      []string{"Dept", "Year"},
		ColumnTypes: map[string]field.ColumnType{
			"Dept": {Type: field.TypeLookup, LookupField: "Title"},
		},
	}
	if err := reg.Save(ctx, rec); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	got, err := reg.LoadByPageKey(ctx, "/pages/home")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if got.Library != rec.Library || got.LibraryTitle != "Documents" {
		t.Errorf("Unexpected library %q / %q", got.Library, got.LibraryTitle)
	}
	if len(got.Columns) != 2 || got.Columns[0] != "Dept" || got.Columns[1] != "Year" {
		t.Errorf("Unexpected columns %v", got.Columns)
	}
	if got.ColumnTypes["Dept"].Type != field.TypeLookup {
		t.Errorf("Unexpected column types %v", got.ColumnTypes)
	}
	if got.PublishedSnapshot != "" {
		t.Errorf("Expected no snapshot, got %q", got.PublishedSnapshot)
	}

	// Upsert replaces the row.
	rec.Columns = []string{"Year"}
	rec.PublishedSnapshot = `[{"Id":1}]`
	if err := reg.Save(ctx, rec); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	got, err = reg.LoadByPageKey(ctx, "/pages/home")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(got.Columns) != 1 || got.PublishedSnapshot != `[{"Id":1}]` {
		t.Errorf("Update not persisted: %+v", got)
	}

	if err := reg.Remove(ctx, "/pages/home"); err != nil {
		t.Fatalf("Failed to remove: %v", err)
	}
	if _, err := reg.LoadByPageKey(ctx, "/pages/home"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after remove, got %v", err)
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"valid", Record{PageKey: "p", Library: "l", Columns: []string{"A", "B", "C"}}, false},
		{"no columns", Record{PageKey: "p"}, false},
		{"trailing empty level", Record{PageKey: "p", Library: "l", Columns: []string{"A", ""}}, false},
		{"missing page", Record{Library: "l"}, true},
		{"too many columns", Record{PageKey: "p", Library: "l", Columns: []string{"A", "B", "C", "D"}}, true},
		{"gap", Record{PageKey: "p", Library: "l", Columns: []string{"", "B"}}, true},
		{"columns without library", Record{PageKey: "p", Columns: []string{"A"}}, true},
		{"multi-value types", Record{PageKey: "p", Library: "l", Columns: []string{"Tags"}, ColumnTypes: map[string]field.ColumnType{
			"Tags":   {Type: field.TypeMultiChoice},
			"Topics": {Type: field.TypeTaxonomyMulti},
		}}, false},
		{"ungroupable type", Record{PageKey: "p", Library: "l", Columns: []string{"Files"}, ColumnTypes: map[string]field.ColumnType{
			"Files": {Type: "Attachments"},
		}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordHelpers(t *testing.T) {
	rec := &Record{Library: "/lib", Columns: []string{"A", "", "B"}}
	if got := rec.GroupingColumns(); len(got) != 2 || got[1] != "B" {
		t.Errorf("GroupingColumns() = %v", got)
	}
	if rec.Title() != "/lib" {
		t.Errorf("Title() = %q", rec.Title())
	}
	rec.LibraryTitle = "Docs"
	if rec.Title() != "Docs" {
		t.Errorf("Title() = %q", rec.Title())
	}
	var nilRec *Record
	if nilRec.GroupingColumns() != nil {
		t.Error("nil record must have no columns")
	}
}
