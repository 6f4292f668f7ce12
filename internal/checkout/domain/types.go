package domain

import (
	"time"

	cart "github.com/moksh1tha/nuastore/internal/cart/domain"
)

// TaxRate is applied to the subtotal; shipping is always free.
const TaxRate = 0.10

// Form is the checkout form as submitted by the visitor.
type Form struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,email"`
	Address string `validate:"required"`
}

// Quote is the derived pricing shown for a cart.
type Quote struct {
	Subtotal float64
	Shipping float64
	Tax      float64
	Total    float64
}

// Order is the simulated confirmation produced by a successful checkout.
type Order struct {
	ID       string
	Name     string
	Email    string
	Address  string
	Lines    []cart.Line
	Subtotal float64
	Tax      float64
	Total    float64
	PlacedAt time.Time
}
