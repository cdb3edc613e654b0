// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"sync"

	"posflow/pkg/order"
	"posflow/pkg/sequence"
)

// Repository provides an in-memory implementation of order.Repository.
// Orders are kept in placement order.
type Repository struct {
	mu     sync.RWMutex
	orders []order.Order
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{}
}

// Add assigns the next O-prefixed identifier and appends the order.
func (r *Repository) Add(ctx context.Context, o order.Order) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.orders))
	for i, e := range r.orders {
		ids[i] = e.ID
	}
	o.ID = sequence.Next("O", ids)
	r.orders = append(r.orders, o)
	return o, nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.orders {
		if e.ID == id {
			return e, nil
		}
	}
	return order.Order{}, order.ErrNotFound
}

// List returns all orders in placement order.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]order.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

// LoadAll replaces the repository contents with a restored snapshot.
func (r *Repository) LoadAll(orders []order.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = make([]order.Order, len(orders))
	copy(r.orders, orders)
}
