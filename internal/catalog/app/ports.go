package app

import (
	"context"

	"github.com/moksh1tha/nuastore/internal/catalog/domain"
)

// Upstream reads catalog data from the remote product API.
type Upstream interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	FetchProduct(ctx context.Context, id int) (domain.Product, error)
	FetchCategories(ctx context.Context) ([]string, error)
}

// DurableCache is the second cache tier: key-value storage that survives
// process restarts. Payloads are opaque bytes; timestamps are epoch millis.
type DurableCache interface {
	Get(ctx context.Context, key string) (payload []byte, fetchedAt int64, ok bool, err error)
	Set(ctx context.Context, key string, payload []byte, fetchedAt int64) error
	Delete(ctx context.Context, key string) error
}
