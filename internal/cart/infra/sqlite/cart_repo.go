// Package sqlite persists the cart so it survives restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	catalog "github.com/moksh1tha/nuastore/internal/catalog/domain"
	"github.com/moksh1tha/nuastore/internal/cart/domain"
)

type CartRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewCartRepo(db *sql.DB, log *slog.Logger) (*CartRepo, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS cart_lines (
		product_id INTEGER PRIMARY KEY,
		product    BLOB NOT NULL,
		quantity   INTEGER NOT NULL,
		position   INTEGER NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create cart_lines table: %w", err)
	}
	return &CartRepo{db: db, log: log}, nil
}

// Load reads the persisted cart in insertion order. Lines whose stored
// product snapshot no longer parses are dropped, not surfaced as errors.
func (r *CartRepo) Load(ctx context.Context) (domain.Cart, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, product, quantity FROM cart_lines ORDER BY position`)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	defer rows.Close()

	var cart domain.Cart
	for rows.Next() {
		var productID, quantity int
		var raw []byte
		if err := rows.Scan(&productID, &raw, &quantity); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart line: %w", err)
		}

		var p catalog.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			r.log.Warn("dropping corrupt cart line", slog.Int("product_id", productID), slog.Any("err", err))
			continue
		}

		cart.Lines = append(cart.Lines, domain.Line{
			Product:  p,
			Quantity: domain.ClampQuantity(quantity),
		})
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

// Save replaces the persisted cart with the given snapshot.
func (r *CartRepo) Save(ctx context.Context, cart domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines`); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	for i, l := range cart.Lines {
		raw, err := json.Marshal(l.Product)
		if err != nil {
			return fmt.Errorf("encode cart line %d: %w", l.Product.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cart_lines (product_id, product, quantity, position) VALUES (?, ?, ?, ?)`,
			l.Product.ID, raw, l.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("save cart line %d: %w", l.Product.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
