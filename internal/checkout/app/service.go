package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	cart "github.com/moksh1tha/nuastore/internal/cart/domain"
	"github.com/moksh1tha/nuastore/internal/checkout/domain"
)

var ErrEmptyCart = errors.New("cart is empty")

// ValidationErrors maps form field names to user-facing messages. It is
// non-fatal: the caller re-renders the form and the visitor re-submits.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	return "invalid checkout form: " + strings.Join(fields, ", ")
}

type Service struct {
	orders   OrderRepo
	validate *validator.Validate
	now      func() time.Time
}

func NewService(orders OrderRepo) *Service {
	return &Service{
		orders:   orders,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// Quote derives the pricing summary for the given lines: 10% tax on the
// subtotal, shipping always free.
func (s *Service) Quote(lines []cart.Line) domain.Quote {
	subtotal := cart.Cart{Lines: lines}.TotalPrice()
	tax := subtotal * domain.TaxRate
	return domain.Quote{
		Subtotal: subtotal,
		Shipping: 0,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// ValidateForm checks the checkout form and reports field-level messages.
func (s *Service) ValidateForm(form domain.Form) ValidationErrors {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{"form": "Invalid form submission"}
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Field() == "Email" && fe.Tag() == "email" {
		return "Invalid email format"
	}
	return fe.Field() + " is required"
}

// PlaceOrder validates the form, records the order and returns the
// confirmation. The caller is responsible for clearing the cart afterwards.
func (s *Service) PlaceOrder(ctx context.Context, form domain.Form, lines []cart.Line) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	if verrs := s.ValidateForm(form); verrs != nil {
		return domain.Order{}, verrs
	}

	quote := s.Quote(lines)
	order := domain.Order{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Address:  strings.TrimSpace(form.Address),
		Lines:    lines,
		Subtotal: quote.Subtotal,
		Tax:      quote.Tax,
		Total:    quote.Total,
		PlacedAt: s.now(),
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("record order: %w", err)
	}
	return order, nil
}
