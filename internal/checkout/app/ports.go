package app

import (
	"context"

	"github.com/moksh1tha/nuastore/internal/checkout/domain"
)

type OrderRepo interface {
	CreateOrder(ctx context.Context, order domain.Order) error
}
