// Package item defines the inventory item entity and its repository contract.
package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Item represents a sellable inventory item. Quantity is the stock on
// hand; only the order service mutates it.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Barcode     string          `json:"barcode,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Repository defines behavior for persisting items. Add assigns the
// identifier.
type Repository interface {
	Add(ctx context.Context, it Item) (Item, error)
	Get(ctx context.Context, id string) (Item, error)
	List(ctx context.Context) ([]Item, error)
	Update(ctx context.Context, it Item) error
	Delete(ctx context.Context, id string) error
}

// ErrNotFound indicates the requested item does not exist.
var ErrNotFound = errors.New("item not found")

var validate = validator.New()

// Validate checks required fields, that the price is strictly positive
// and that the stock quantity is not negative.
func (it Item) Validate() error {
	if err := validate.Struct(it); err != nil {
		return err
	}
	if !it.Price.IsPositive() {
		return fmt.Errorf("price must be greater than 0, got %s", it.Price)
	}
	return nil
}
