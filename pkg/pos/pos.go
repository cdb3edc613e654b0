// Package pos implements order placement against current inventory:
// validate the full request, then atomically decrement stock, snapshot
// unit prices and append the order.
package pos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"posflow/pkg/customer"
	"posflow/pkg/item"
	"posflow/pkg/order"
)

// ErrEmptyOrder indicates a placement request with no line items.
var ErrEmptyOrder = errors.New("order has no line items")

// InvalidQuantityError indicates a line request with a non-positive
// quantity.
type InvalidQuantityError struct {
	ItemID   string
	Quantity int
}

func (e InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for item %s", e.Quantity, e.ItemID)
}

// InsufficientStockError indicates a merged line quantity exceeding the
// item's stock on hand.
type InsufficientStockError struct {
	ItemID    string
	Requested int
	Available int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

// LineRequest asks for a quantity of one item.
type LineRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// PlaceOrderRequest is the input to PlaceOrder. A zero Date means the
// current day.
type PlaceOrderRequest struct {
	CustomerID string
	Lines      []LineRequest
	Date       time.Time
	Notes      string
}

// Service validates and commits orders. A single mutex serializes the
// validate-then-commit pass so stock checks and decrements cannot
// interleave across placements.
type Service struct {
	mu        sync.Mutex
	customers customer.Repository
	items     item.Repository
	orders    order.Repository
}

// NewService creates an order service over the given repositories.
func NewService(customers customer.Repository, items item.Repository, orders order.Repository) *Service {
	return &Service{customers: customers, items: items, orders: orders}
}

// PlaceOrder validates the request, decrements stock, snapshots unit
// prices, computes the total and appends the order. Validation
// short-circuits on the first failure and no stock is touched unless the
// whole request is valid. Duplicate references to the same item are
// merged before the stock check.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.customers.Get(ctx, req.CustomerID); err != nil {
		return order.Order{}, fmt.Errorf("customer %s: %w", req.CustomerID, err)
	}
	if len(req.Lines) == 0 {
		return order.Order{}, ErrEmptyOrder
	}
	for _, l := range req.Lines {
		if _, err := s.items.Get(ctx, l.ItemID); err != nil {
			return order.Order{}, fmt.Errorf("item %s: %w", l.ItemID, err)
		}
	}
	for _, l := range req.Lines {
		if l.Quantity <= 0 {
			return order.Order{}, InvalidQuantityError{ItemID: l.ItemID, Quantity: l.Quantity}
		}
	}

	merged := mergeLines(req.Lines)
	for _, l := range merged {
		it, err := s.items.Get(ctx, l.ItemID)
		if err != nil {
			return order.Order{}, fmt.Errorf("item %s: %w", l.ItemID, err)
		}
		if l.Quantity > it.Quantity {
			return order.Order{}, InsufficientStockError{ItemID: l.ItemID, Requested: l.Quantity, Available: it.Quantity}
		}
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	lines := make([]order.Line, 0, len(merged))
	total := decimal.Zero
	for _, l := range merged {
		it, err := s.items.Get(ctx, l.ItemID)
		if err != nil {
			return order.Order{}, fmt.Errorf("item %s: %w", l.ItemID, err)
		}
		it.Quantity -= l.Quantity
		if it.Quantity < 0 {
			it.Quantity = 0
		}
		if err := s.items.Update(ctx, it); err != nil {
			return order.Order{}, fmt.Errorf("update item %s: %w", it.ID, err)
		}
		lines = append(lines, order.Line{
			ItemID:    it.ID,
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  l.Quantity,
		})
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	o := order.Order{
		CustomerID: req.CustomerID,
		Date:       date,
		Lines:      lines,
		Notes:      req.Notes,
		Status:     order.StatusCompleted,
		Total:      total,
	}
	placed, err := s.orders.Add(ctx, o)
	if err != nil {
		return order.Order{}, fmt.Errorf("append order: %w", err)
	}
	return placed, nil
}

// mergeLines combines duplicate item references, preserving first-seen
// order.
func mergeLines(lines []LineRequest) []LineRequest {
	idx := make(map[string]int, len(lines))
	merged := make([]LineRequest, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.ItemID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		idx[l.ItemID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}
