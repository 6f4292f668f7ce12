package app

import (
	"context"
	"log/slog"

	"github.com/moksh1tha/nuastore/internal/cart/domain"
)

// Persist subscribes a saver that writes every published snapshot to repo.
// Persistence failures are logged, never surfaced: cart mutations have no
// error path.
func Persist(store *Store, repo Repo, log *slog.Logger) (cancel func()) {
	return store.Subscribe(func(c domain.Cart) {
		if err := repo.Save(context.Background(), c); err != nil {
			log.Warn("cart persist failed", slog.Any("err", err))
		}
	})
}
