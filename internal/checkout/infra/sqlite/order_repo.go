// Package sqlite records placed orders.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/moksh1tha/nuastore/internal/checkout/domain"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) (*OrderRepo, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS orders (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		email     TEXT NOT NULL,
		address   TEXT NOT NULL,
		subtotal  REAL NOT NULL,
		tax       REAL NOT NULL,
		total     REAL NOT NULL,
		placed_at INTEGER NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create orders table: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS order_items (
		order_id   TEXT NOT NULL REFERENCES orders(id),
		product_id INTEGER NOT NULL,
		title      TEXT NOT NULL,
		unit_price REAL NOT NULL,
		quantity   INTEGER NOT NULL,
		PRIMARY KEY (order_id, product_id)
	)`)
	if err != nil {
		return nil, fmt.Errorf("create order_items table: %w", err)
	}
	return &OrderRepo{db: db}, nil
}

// CreateOrder inserts the order and its items in one transaction.
func (r *OrderRepo) CreateOrder(ctx context.Context, order domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, name, email, address, subtotal, tax, total, placed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.Name, order.Email, order.Address,
		order.Subtotal, order.Tax, order.Total, order.PlacedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}

	for _, l := range order.Lines {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, title, unit_price, quantity)
			 VALUES (?, ?, ?, ?, ?)`,
			order.ID, l.Product.ID, l.Product.Title, l.Product.Price, l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item %d: %w", l.Product.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}
