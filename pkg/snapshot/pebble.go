package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

var snapshotKey = []byte("pos/snapshot")

// PebbleStore keeps the snapshot in a local PebbleDB key-value store.
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens (or creates) the store at dir.
func NewPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Save writes the snapshot, replacing any previous one. The set is
// synced so a committed placement survives a crash.
func (p *PebbleStore) Save(ctx context.Context, s Snapshot) error {
	b, err := json.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := p.db.Set(snapshotKey, b, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

// Load reads the latest snapshot. An absent key yields an empty
// snapshot.
func (p *PebbleStore) Load(ctx context.Context) (Snapshot, error) {
	v, closer, err := p.db.Get(snapshotKey)
	if err == pebble.ErrNotFound {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()
	var s Snapshot
	if err := json.Unmarshal(v, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (p *PebbleStore) Close() error { return p.db.Close() }
