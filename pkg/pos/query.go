package pos

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"posflow/pkg/customer"
	"posflow/pkg/order"
)

// ListOrders returns all placed orders in placement order.
func (s *Service) ListOrders(ctx context.Context) ([]order.Order, error) {
	return s.orders.List(ctx)
}

// GetOrder retrieves a placed order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (order.Order, error) {
	return s.orders.Get(ctx, id)
}

// CustomerDisplayName resolves the customer name for an order. If the
// customer has since been deleted the raw identifier is returned, leaving
// the order itself intact.
func (s *Service) CustomerDisplayName(ctx context.Context, o order.Order) (string, error) {
	c, err := s.customers.Get(ctx, o.CustomerID)
	if errors.Is(err, customer.ErrNotFound) {
		return o.CustomerID, nil
	}
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

// OrderTotal returns the sum of snapshot unit price times quantity across
// the order's lines.
func OrderTotal(o order.Order) decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// OrderItemCount returns the total ordered quantity across the order's
// lines.
func OrderItemCount(o order.Order) int {
	return o.ItemCount()
}

// FilterBySubstring returns the records whose rendered fields contain
// term, case-insensitively. An empty term matches everything.
func FilterBySubstring[T any](records []T, term string, render func(T) []string) []T {
	term = strings.ToLower(term)
	var out []T
	for _, r := range records {
		if term == "" {
			out = append(out, r)
			continue
		}
		for _, f := range render(r) {
			if strings.Contains(strings.ToLower(f), term) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
