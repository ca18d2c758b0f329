package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")
var ErrCategoryNotFound = errors.New("category not found")
var ErrCategoryExists = errors.New("category already exists")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidInput = errors.New("invalid input")

// Reference is a denormalized {id, name} pointer to another aggregate.
// Products embed references to their owner and category so list queries
// never need a join.
type Reference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is the core aggregate root. The owner is assigned at creation
// time and never reassigned afterwards.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  Reference       `json:"category"`
	Owner     Reference       `json:"owner"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Category groups products. Names are unique.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
