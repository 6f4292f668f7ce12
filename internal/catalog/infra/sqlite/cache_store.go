// Package sqlite persists catalog cache entries across restarts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CacheStore is the durable cache tier, backed by a SQLite key-value table.
type CacheStore struct {
	db *sql.DB
}

func NewCacheStore(db *sql.DB) (*CacheStore, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS catalog_cache (
		key        TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create catalog_cache table: %w", err)
	}
	return &CacheStore{db: db}, nil
}

func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, int64, bool, error) {
	var payload []byte
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM catalog_cache WHERE key = ?`, key,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("read cache entry %q: %w", key, err)
	}
	return payload, fetchedAt, true, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, payload []byte, fetchedAt int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO catalog_cache (key, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		key, payload, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("write cache entry %q: %w", key, err)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM catalog_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cache entry %q: %w", key, err)
	}
	return nil
}
