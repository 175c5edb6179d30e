package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
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

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetItemPrice reads a cached catalog price. The bool reports a cache hit.
func (c *Client) GetItemPrice(ctx context.Context, itemID int64) (int64, bool, error) {
	key := fmt.Sprintf("catalog:price:%d", itemID)

	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	price, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cached price for item %d: %w", itemID, err)
	}
	return price, true, nil
}

// SetItemPrice caches a catalog price with TTL
func (c *Client) SetItemPrice(ctx context.Context, itemID, price int64, ttl time.Duration) error {
	key := fmt.Sprintf("catalog:price:%d", itemID)
	return c.rdb.Set(ctx, key, price, ttl).Err()
}

// InvalidateItemPrice drops a cached catalog price after a price change
func (c *Client) InvalidateItemPrice(ctx context.Context, itemID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("catalog:price:%d", itemID)).Err()
}

// AcquireLock acquires a distributed lock
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
