package app

import (
	"context"

	"github.com/moksh1tha/nuastore/internal/cart/domain"
)

// Repo persists cart snapshots across restarts.
type Repo interface {
	Load(ctx context.Context) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}
