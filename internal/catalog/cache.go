package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const productsKey = "catalog:products"

// Cache stores the parsed product list in Redis so restarts do not refetch
// the catalog. All methods are nil-safe no-ops when Redis is not configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper around an optional Redis client.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetProducts unmarshals the cached product list into dst. It reports whether
// the key existed.
func (c *Cache) GetProducts(ctx context.Context, dst *[]Product) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	data, err := c.client.Get(ctx, productsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetProducts serialises the product list and stores it with the configured
// TTL.
func (c *Cache) SetProducts(ctx context.Context, products []Product) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productsKey, data, c.ttl).Err()
}
