package cache

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

// SQLiteStore persists entries in a single table; the items are stored as a
// JSON payload.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the cache database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize cache: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS item_cache (
		key TEXT PRIMARY KEY,
		columns TEXT NOT NULL,
		payload BLOB NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get loads an entry. ErrMiss is returned when the key is absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Entry, error) {
	var columns string
	var payload []byte
	var fetchedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT columns, payload, fetched_at FROM item_cache WHERE key = ?`, key,
	).Scan(&columns, &payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	e := &Entry{FetchedAt: fetchedAt}
	if err := json.Unmarshal([]byte(columns), &e.Columns); err != nil {
		return nil, fmt.Errorf("decode cached columns: %w", err)
	}
	if err := json.Unmarshal(payload, &e.Items); err != nil {
		return nil, fmt.Errorf("decode cached items: %w", err)
	}
	return e, nil
}

// Put writes an entry, replacing any previous one for key.
func (s *SQLiteStore) Put(ctx context.Context, key string, e *Entry) error {
	columns, err := json.Marshal(e.Columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	payload, err := json.Marshal(e.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	fetchedAt := e.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT OR REPLACE INTO item_cache (key, columns, payload, fetched_at)
	VALUES (?, ?, ?, ?)
	`, key, string(columns), payload, fetchedAt)
	return err
}

// Delete removes an entry; deleting a missing key is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM item_cache WHERE key = ?`, key)
	return err
}

// Clear drops every entry.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM item_cache`)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
