// Package snapshot persists the order and item collections as a single
// JSON document so a restart can restore the working set. A missing
// snapshot means empty collections.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"posflow/pkg/item"
	"posflow/pkg/order"
)

// Snapshot is the persisted document: two ordered sequences whose record
// shapes match the domain entities.
type Snapshot struct {
	Orders []order.Order `json:"orders"`
	Items  []item.Item   `json:"items"`
}

// Store persists and restores snapshots.
type Store interface {
	Save(ctx context.Context, s Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
	Close() error
}

// FileStore keeps the snapshot in one JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store under dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, "snapshot.json")}, nil
}

// Save writes the snapshot, replacing any previous one. The write goes
// through a temp file and rename so a crash never leaves a torn document.
func (f *FileStore) Save(ctx context.Context, s Snapshot) error {
	b, err := json.MarshalIndent(&s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Load reads the latest snapshot. A missing file yields an empty
// snapshot.
func (f *FileStore) Load(ctx context.Context) (Snapshot, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal: %w", err)
	}
	return s, nil
}

// Close is a no-op for the file store.
func (f *FileStore) Close() error { return nil }
