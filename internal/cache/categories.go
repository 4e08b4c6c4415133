// Package cache keeps the distinct category list in Redis between catalog writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const categoriesKey = "inventory:categories"

// Categories is a read-through cache for the category list. A nil client
// turns every call into a miss, so the service runs without Redis.
type Categories struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient returns nil when addr is empty.
func NewRedisClient(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password})
}

func NewCategories(rdb *redis.Client, ttl time.Duration) *Categories {
	return &Categories{rdb: rdb, ttl: ttl}
}

// Get reports whether a cached list was found.
func (c *Categories) Get(ctx context.Context) ([]string, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	val, err := c.rdb.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		return nil, false
	}

	var categories []string
	if err := json.Unmarshal(val, &categories); err != nil {
		return nil, false
	}
	return categories, true
}

func (c *Categories) Set(ctx context.Context, categories []string) error {
	if c == nil || c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, categoriesKey, data, c.ttl).Err()
}

// Invalidate drops the cached list after a write that may change it.
func (c *Categories) Invalidate(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	err := c.rdb.Del(ctx, categoriesKey).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Ping checks the connection; a disabled cache is always healthy.
func (c *Categories) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Categories) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
