package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/moksh1tha/nuastore/internal/catalog/domain"
)

// DefaultTTL is how long a cached catalog entry stays valid.
const DefaultTTL = 5 * time.Minute

// durablePrefix namespaces cache keys in durable storage so they cannot
// collide with unrelated application data.
const durablePrefix = "cache_"

const (
	keyProducts   = "/products"
	keyCategories = "/categories"
)

func keyProduct(id int) string {
	return "/products/" + strconv.Itoa(id)
}

// FetchError is the single failure kind surfaced by the catalog client.
// It carries the logical resource path that was being read.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return "fetch " + e.Resource + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

type entry[T any] struct {
	payload   T
	fetchedAt int64
}

// Client serves catalog reads through a two-tier cache: an in-memory map
// backed by durable storage. Misses fall through to the upstream API.
// Safe for concurrent use.
type Client struct {
	upstream Upstream
	durable  DurableCache
	ttl      time.Duration
	log      *slog.Logger
	now      func() time.Time

	mu         sync.RWMutex
	products   map[string]entry[[]domain.Product]
	product    map[string]entry[domain.Product]
	categories map[string]entry[[]string]

	flight singleflight.Group
}

func NewClient(upstream Upstream, durable DurableCache, log *slog.Logger, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Client{
		upstream:   upstream,
		durable:    durable,
		ttl:        ttl,
		log:        log,
		now:        time.Now,
		products:   make(map[string]entry[[]domain.Product]),
		product:    make(map[string]entry[domain.Product]),
		categories: make(map[string]entry[[]string]),
	}
}

// Products returns the full product list.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	return cached(ctx, c, c.products, keyProducts, c.upstream.FetchProducts)
}

// Product returns a single product by id.
func (c *Client) Product(ctx context.Context, id int) (domain.Product, error) {
	return cached(ctx, c, c.product, keyProduct(id), func(ctx context.Context) (domain.Product, error) {
		return c.upstream.FetchProduct(ctx, id)
	})
}

// Categories returns the category list.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	return cached(ctx, c, c.categories, keyCategories, c.upstream.FetchCategories)
}

func (c *Client) valid(fetchedAt int64) bool {
	return c.now().UnixMilli()-fetchedAt < c.ttl.Milliseconds()
}

// cached implements the read contract for one resource: memory tier, then
// durable rehydration, then upstream fetch. Concurrent reads of the same
// key are coalesced into a single flight; failures are never cached.
func cached[T any](ctx context.Context, c *Client, tier map[string]entry[T], key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := memoryGet(c, tier, key); ok {
		return v, nil
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		// Another flight may have filled the memory tier while we waited.
		if v, ok := memoryGet(c, tier, key); ok {
			return v, nil
		}

		if v, ok := durableGet(ctx, c, tier, key); ok {
			return v, nil
		}

		payload, err := fetch(ctx)
		if err != nil {
			return nil, &FetchError{Resource: key, Err: err}
		}

		store(ctx, c, tier, key, payload)
		return payload, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func memoryGet[T any](c *Client, tier map[string]entry[T], key string) (T, bool) {
	c.mu.RLock()
	e, ok := tier[key]
	c.mu.RUnlock()
	if ok && c.valid(e.fetchedAt) {
		return e.payload, true
	}
	var zero T
	return zero, false
}

// durableGet rehydrates the memory tier from durable storage. Expired and
// unparseable entries are evicted and treated as misses. Storage errors
// only degrade to a miss; the read itself must not fail on them.
func durableGet[T any](ctx context.Context, c *Client, tier map[string]entry[T], key string) (T, bool) {
	var zero T

	raw, fetchedAt, ok, err := c.durable.Get(ctx, durablePrefix+key)
	if err != nil {
		c.log.Warn("durable cache read failed", slog.String("key", key), slog.Any("err", err))
		return zero, false
	}
	if !ok {
		return zero, false
	}

	if !c.valid(fetchedAt) {
		c.evict(ctx, key)
		return zero, false
	}

	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.log.Warn("durable cache entry corrupt", slog.String("key", key), slog.Any("err", err))
		c.evict(ctx, key)
		return zero, false
	}

	c.mu.Lock()
	tier[key] = entry[T]{payload: payload, fetchedAt: fetchedAt}
	c.mu.Unlock()

	return payload, true
}

// store writes a fresh payload to both tiers. A durable write failure is
// logged but does not fail the read that produced the payload.
func store[T any](ctx context.Context, c *Client, tier map[string]entry[T], key string, payload T) {
	fetchedAt := c.now().UnixMilli()

	c.mu.Lock()
	tier[key] = entry[T]{payload: payload, fetchedAt: fetchedAt}
	c.mu.Unlock()

	raw, err := json.Marshal(payload)
	if err != nil {
		c.log.Warn("durable cache encode failed", slog.String("key", key), slog.Any("err", err))
		return
	}
	if err := c.durable.Set(ctx, durablePrefix+key, raw, fetchedAt); err != nil {
		c.log.Warn("durable cache write failed", slog.String("key", key), slog.Any("err", err))
	}
}

func (c *Client) evict(ctx context.Context, key string) {
	if err := c.durable.Delete(ctx, durablePrefix+key); err != nil {
		c.log.Warn("durable cache delete failed", slog.String("key", key), slog.Any("err", err))
	}
}
