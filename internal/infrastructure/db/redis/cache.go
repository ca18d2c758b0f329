package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketbase/catalog-api/internal/core/domain"
)

const productTTL = 5 * time.Minute

// ProductCache caches single-product lookups in Redis.
// Key format: product:<id>
type ProductCache struct {
	client *redis.Client
}

// NewProductCache creates a ProductCache wrapping the given Redis client.
func NewProductCache(client *redis.Client) *ProductCache {
	return &ProductCache{client: client}
}

// Get returns the cached product, or (nil, nil) on a miss.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten.
		return nil, nil
	}
	return &p, nil
}

// Set stores the product with a short TTL.
func (c *ProductCache) Set(ctx context.Context, p *domain.Product) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	return c.client.Set(ctx, c.key(p.ID), raw, productTTL).Err()
}

// Invalidate drops the cached entry after a mutation.
func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *ProductCache) key(id string) string {
	return "product:" + id
}
