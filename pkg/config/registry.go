package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
)

// Registry is a Store backed by SQLite, one row per page.
type Registry struct {
	db *sql.DB
}

// NewRegistry opens the registry database inside dataDir.
func NewRegistry(dataDir string) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "trees.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	r := &Registry{db: db}
	if err := r.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize registry: %w", err)
	}
	return r, nil
}

// init creates the database schema
func (r *Registry) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tree_configs (
		page_key TEXT PRIMARY KEY,
		library TEXT,
		library_title TEXT,
		hierarchy TEXT,
		column_types TEXT,
		published_tree_data TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tree_configs_library ON tree_configs(library);
	`

	_, err := r.db.Exec(schema)
	return err
}

// LoadByPageKey returns the record of a page or ErrNotFound.
func (r *Registry) LoadByPageKey(ctx context.Context, key string) (*Record, error) {
	query := `
	SELECT page_key, library, library_title, hierarchy, column_types, published_tree_data, updated_at
	FROM tree_configs WHERE page_key = ?
	`

	rec := &Record{}
	var library, title, hierarchy, columnTypes, published sql.NullString
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&rec.PageKey, &library, &title, &hierarchy, &columnTypes, &published, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}

	rec.Library = library.String
	rec.LibraryTitle = title.String
	rec.PublishedSnapshot = published.String

	if hierarchy.String != "" {
		if err := json.Unmarshal([]byte(hierarchy.String), &rec.Columns); err != nil {
			return nil, fmt.Errorf("unmarshal hierarchy: %w", err)
		}
	}
	if columnTypes.String != "" {
		if err := json.Unmarshal([]byte(columnTypes.String), &rec.ColumnTypes); err != nil {
			return nil, fmt.Errorf("unmarshal column types: %w", err)
		}
	}

	return rec, nil
}

// Save upserts the record of a page.
func (r *Registry) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validate tree configuration: %w", err)
	}

	hierarchy, err := json.Marshal(rec.Columns)
	if err != nil {
		return fmt.Errorf("marshal hierarchy: %w", err)
	}
	columnTypes, err := json.Marshal(rec.ColumnTypes)
	if err != nil {
		return fmt.Errorf("marshal column types: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO tree_configs (page_key, library, library_title, hierarchy, column_types, published_tree_data, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	rec.UpdatedAt = time.Now()
	_, err = r.db.ExecContext(ctx, query,
		rec.PageKey, nullable(rec.Library), nullable(rec.LibraryTitle),
		string(hierarchy), string(columnTypes), nullable(rec.PublishedSnapshot), rec.UpdatedAt,
	)
	return err
}

// Remove deletes the record of a page.
func (r *Registry) Remove(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM tree_configs WHERE page_key = ?", key)
	return err
}

// Close closes the registry database
func (r *Registry) Close() error {
	return r.db.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
