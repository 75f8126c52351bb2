package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"inventory-reservation-service/internal/store"
)

// CacheClient writes read-side availability snapshots to Redis.
//
// The in-memory store remains the only source of truth; the cache is a
// TTL-bounded convenience for dashboards and external readers, and the
// engine never reads it on the hot path.
type CacheClient struct {
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
}

// NewCacheClient creates a Redis client for snapshot publishing.
func NewCacheClient(addrs []string, password string, ttl time.Duration, keyPrefix string) *CacheClient {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:      addrs,
		Password:   password,
		MaxRetries: 3,
	})

	return &CacheClient{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// SetStock stores one product's availability snapshot.
func (c *CacheClient) SetStock(ctx context.Context, snap store.StockSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal stock snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.stockKey(snap.ProductID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache stock snapshot: %w", err)
	}
	return nil
}

// SetSnapshot stores the full availability snapshot.
func (c *CacheClient) SetSnapshot(ctx context.Context, snapshot []store.StockSnapshot) error {
	for _, snap := range snapshot {
		if err := c.SetStock(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStockAsync refreshes one product's snapshot from a goroutine
// with a bounded timeout. Used after mutations so cache writes never
// delay a response.
func (c *CacheClient) UpdateStockAsync(snap store.StockSnapshot) {
	if c == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.SetStock(ctx, snap); err != nil {
			log.Error().Err(err).Str("product_id", snap.ProductID).Msg("Failed to update stock cache")
		}
	}()
}

// Ping checks if Redis is reachable.
func (c *CacheClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *CacheClient) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *CacheClient) stockKey(productID string) string {
	return fmt.Sprintf("%sstock:%s", c.keyPrefix, productID)
}
