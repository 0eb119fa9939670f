package source

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/mattsolo1/grove-metatree/pkg/models"
)

// SnapshotFetcher serves a published snapshot instead of querying the
// library. The snapshot is parsed once at construction.
type SnapshotFetcher struct {
	items []*models.Item
}

// NewSnapshotFetcher parses snapshot. An unparseable snapshot is an error so
// the caller can fall back to a live fetch.
func NewSnapshotFetcher(snapshot string) (*SnapshotFetcher, error) {
	items, err := ParseSnapshot(snapshot)
	if err != nil {
		return nil, err
	}
	return &SnapshotFetcher{items: items}, nil
}

// FetchItems implements Fetcher. The query is ignored: a snapshot already
// holds the projection it was published with.
func (f *SnapshotFetcher) FetchItems(ctx context.Context, _ Query) ([]*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.items, nil
}

// ParseSnapshot decodes a published snapshot.
func ParseSnapshot(snapshot string) ([]*models.Item, error) {
	if snapshot == "" {
		return nil, fmt.Errorf("empty snapshot")
	}
	items, err := DecodeRows([]byte(snapshot))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return items, nil
}

// EncodeSnapshot serializes items in the layout ParseSnapshot reads.
func EncodeSnapshot(items []*models.Item) (string, error) {
	if items == nil {
		items = []*models.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(data), nil
}
