// Package memory implements an in-memory customer repository.
package memory

import (
	"context"
	"sync"

	"posflow/pkg/customer"
	"posflow/pkg/sequence"
)

// Repository provides an in-memory implementation of customer.Repository.
// Records are kept in insertion order.
type Repository struct {
	mu        sync.RWMutex
	customers []customer.Customer
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{}
}

// Add assigns the next C-prefixed identifier and stores the customer.
func (r *Repository) Add(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.customers))
	for i, cu := range r.customers {
		ids[i] = cu.ID
	}
	c.ID = sequence.Next("C", ids)
	r.customers = append(r.customers, c)
	return c, nil
}

// Get retrieves a customer by ID.
func (r *Repository) Get(ctx context.Context, id string) (customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return customer.Customer{}, customer.ErrNotFound
}

// List returns all customers in insertion order.
func (r *Repository) List(ctx context.Context) ([]customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]customer.Customer, len(r.customers))
	copy(out, r.customers)
	return out, nil
}

// Update replaces an existing customer.
func (r *Repository) Update(ctx context.Context, c customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cu := range r.customers {
		if cu.ID == c.ID {
			r.customers[i] = c
			return nil
		}
	}
	return customer.ErrNotFound
}

// Delete removes a customer by ID. Orders referencing the customer are
// untouched; name resolution for them degrades to the raw identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cu := range r.customers {
		if cu.ID == id {
			r.customers = append(r.customers[:i], r.customers[i+1:]...)
			return nil
		}
	}
	return customer.ErrNotFound
}
