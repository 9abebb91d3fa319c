package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Cache adalah fast-path best-effort di atas Redis.
// Error Redis diperlakukan sebagai miss; database tetap sumber kebenaran.
type Cache struct {
	R *redis.Client
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.R.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	_ = c.R.Set(ctx, key, val, ttl).Err()
}
