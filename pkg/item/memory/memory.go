// Package memory implements an in-memory item repository.
package memory

import (
	"context"
	"sync"

	"posflow/pkg/item"
	"posflow/pkg/sequence"
)

// Repository provides an in-memory implementation of item.Repository.
// Records are kept in insertion order.
type Repository struct {
	mu    sync.RWMutex
	items []item.Item
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{}
}

// Add assigns the next P-prefixed identifier and stores the item.
func (r *Repository) Add(ctx context.Context, it item.Item) (item.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.items))
	for i, e := range r.items {
		ids[i] = e.ID
	}
	it.ID = sequence.Next("P", ids)
	r.items = append(r.items, it)
	return it, nil
}

// Get retrieves an item by ID.
func (r *Repository) Get(ctx context.Context, id string) (item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.items {
		if e.ID == id {
			return e, nil
		}
	}
	return item.Item{}, item.ErrNotFound
}

// List returns all items in insertion order.
func (r *Repository) List(ctx context.Context) ([]item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]item.Item, len(r.items))
	copy(out, r.items)
	return out, nil
}

// Update replaces an existing item.
func (r *Repository) Update(ctx context.Context, it item.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.items {
		if e.ID == it.ID {
			r.items[i] = it
			return nil
		}
	}
	return item.ErrNotFound
}

// Delete removes an item by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.items {
		if e.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return item.ErrNotFound
}

// LoadAll replaces the repository contents with a restored snapshot.
func (r *Repository) LoadAll(items []item.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make([]item.Item, len(items))
	copy(r.items, items)
}
