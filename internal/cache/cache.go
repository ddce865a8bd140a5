package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client but fails safe by swallowing connectivity errors.
// A nil *Client is valid and behaves as an always-empty cache.
type Client struct {
	client *redis.Client
	prefix string
}

// New creates a new Redis client. Keys are namespaced with prefix.
func New(addr, password string, db int, prefix string) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts), prefix: prefix}
}

// Ping reports whether redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connections.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) key(k string) string {
	return c.prefix + k
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	res, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		// redis.Nil and connectivity errors both read as a miss
		return nil
	}
	return res
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// Delete removes keys, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	_ = c.client.Del(ctx, full...).Err()
}

// GetJSON decodes a cached JSON value into dst. It reports false on a miss
// or an undecodable entry.
func GetJSON[T any](ctx context.Context, c *Client, key string, dst *T) bool {
	data := c.Get(ctx, key)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON encodes v as JSON and caches it for ttl.
func SetJSON[T any](ctx context.Context, c *Client, key string, v T, ttl time.Duration) {
	if c == nil {
		return
	}
	if payload, err := json.Marshal(v); err == nil {
		c.Set(ctx, key, payload, ttl)
	}
}
