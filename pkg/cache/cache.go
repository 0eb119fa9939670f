// Package cache keeps fetched item collections together with the column
// set they were fetched for, so that a remount with an unchanged
// configuration does not hit the network again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/mattsolo1/grove-metatree/pkg/models"
)

// ErrMiss is returned by Get when no entry exists for a key.
var ErrMiss = errors.New("cache miss")

// Entry is one cache generation: the flat collection plus the columns it was
// fetched under.
type Entry struct {
	Columns   []string       `json:"columns"`
	Items     []*models.Item `json:"items"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// Store persists entries by key.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, e *Entry) error
	Delete(ctx context.Context, key string) error
}

// IsValid reports whether a collection fetched for cached columns can serve
// a request for requested columns. Order does not matter; multiplicity does.
func IsValid(cached, requested []string) bool {
	if len(cached) != len(requested) {
		return false
	}
	a := slices.Clone(cached)
	b := slices.Clone(requested)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// Key derives the slot for one tree instance. Two pages showing the same
// library, one page switching libraries, or one page pointed at another
// backend never share a slot.
func Key(sourceID, pageKey, library string) string {
	sum := sha256.Sum256([]byte(sourceID + "\x00" + pageKey + "\x00" + library))
	return "items:" + hex.EncodeToString(sum[:12])
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return e, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
