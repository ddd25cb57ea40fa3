package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb        *redis.Client
	productTTL time.Duration
}

// NewClient creates a new Redis client and verifies the connection.
func NewClient(addr, password string, db int, productTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, productTTL: productTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// --- product cache ---

// GetCachedProduct returns a cached product, or (nil, nil) on cache miss.
func (c *Client) GetCachedProduct(ctx context.Context, productID string) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("corrupt cached product %s: %w", productID, err)
	}
	return &product, nil
}

// CacheProduct stores a product for the configured TTL.
func (c *Client) CacheProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, c.productTTL).Err()
}

// InvalidateProduct drops a product from the cache.
func (c *Client) InvalidateProduct(ctx context.Context, productID string) error {
	return c.rdb.Del(ctx, productKey(productID)).Err()
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// --- idempotency keys ---

// RememberIdempotencyKey maps an idempotency key to the order it
// produced, so replays can skip the database lookup.
func (c *Client) RememberIdempotencyKey(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return c.rdb.Set(ctx, idempotencyKey(key), orderID, ttl).Err()
}

// GetIdempotentOrderID returns the order id recorded for an idempotency
// key, or "" when the key is unknown.
func (c *Client) GetIdempotentOrderID(ctx context.Context, key string) (string, error) {
	orderID, err := c.rdb.Get(ctx, idempotencyKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return orderID, nil
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}
