// Package cache keeps resolved bearer-token sessions in Redis so that most
// authenticated requests skip the sessions table.
//
// Redis is optional: the service layer treats every cache error as a miss
// and falls back to PostgreSQL.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pool sizing for the session cache. Every authenticated request does at
// most one lookup and one write, so a small pool suffices.
const (
	poolSize        = 10
	minIdleConns    = 2
	poolTimeout     = 4 * time.Second
	connMaxIdleTime = 5 * time.Minute
)

// Cache stores session entries keyed by token hash.
type Cache struct {
	client *redis.Client
}

// New connects to the Redis instance at redisURL and fails unless it answers
// a PING, so a misconfigured REDIS_URL is caught at startup.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse session cache url: %w", err)
	}
	opt.PoolSize = poolSize
	opt.MinIdleConns = minIdleConns
	opt.PoolTimeout = poolTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime

	c := NewWithClient(redis.NewClient(opt))
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("connect session cache: %w", err)
	}

	return c, nil
}

// NewWithClient builds a Cache on an existing client, e.g. one pointed at
// miniredis in tests.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping reports whether the session cache is reachable. Used by readiness checks.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client for test fixtures that flush the database.
func (c *Cache) Client() *redis.Client {
	return c.client
}
