// Package order defines the canonical order shape and its repository
// contract. Orders reference customers by identifier only; display names
// are resolved at read time.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. Placement is the only way an
// order comes into existence, and it completes synchronously.
type Status string

// StatusCompleted is the status of every placed order.
const StatusCompleted Status = "completed"

// Line is one ordered line item. UnitPrice is snapshotted at placement
// and never recomputed from the live item price.
type Line struct {
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Order represents a placed customer order. Orders are immutable once
// placed.
type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customerId"`
	Date       time.Time       `json:"date"`
	Lines      []Line          `json:"lines"`
	Notes      string          `json:"notes,omitempty"`
	Status     Status          `json:"status"`
	Total      decimal.Decimal `json:"total"`
}

// ItemCount returns the total ordered quantity across all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// Repository defines behavior for persisting orders. Add assigns the
// identifier. There is no update or delete: placed orders are read-only.
type Repository interface {
	Add(ctx context.Context, o Order) (Order, error)
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context) ([]Order, error)
}

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order not found")
