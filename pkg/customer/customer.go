// Package customer defines the customer entity and its repository contract.
package customer

import (
	"context"
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Customer represents a registered buyer.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name" validate:"required"`
	Mobile  string `json:"mobile" validate:"required,localmobile"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"address" validate:"required"`
}

// Repository defines behavior for persisting customers. Add assigns the
// identifier; callers must not set one themselves.
type Repository interface {
	Add(ctx context.Context, c Customer) (Customer, error)
	Get(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Update(ctx context.Context, c Customer) error
	Delete(ctx context.Context, id string) error
}

// ErrNotFound indicates the requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

var mobileRe = regexp.MustCompile(`^0[1-9][0-9]{8}$`)

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("localmobile", func(fl validator.FieldLevel) bool {
		return mobileRe.MatchString(fl.Field().String())
	})
	return v
}()

// Validate checks required fields, the 10-digit local mobile format and,
// when present, email syntax.
func (c Customer) Validate() error {
	return validate.Struct(c)
}
