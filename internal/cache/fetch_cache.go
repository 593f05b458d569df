package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// FetchCache memoizes upstream HR fetch results in Redis for a bounded
// window. Keys encode the exact request parameter tuple, so a repeated
// fetch within the TTL returns the same payload without a round trip to
// the HR backend.
type FetchCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewFetchCache(client *redisv9.Client, ttl time.Duration) *FetchCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &FetchCache{client: client, ttl: ttl}
}

// Get unmarshals the cached payload for key into dest. The second return
// is false on a miss.
func (c *FetchCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.fullKey(key)).Result()
	if err == redisv9.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get fetch cache failed: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("unmarshal cached fetch failed: %w", err)
	}
	return true, nil
}

// Set stores the payload for key with the configured TTL.
func (c *FetchCache) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal fetch cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set fetch cache failed: %w", err)
	}
	return nil
}

func (c *FetchCache) fullKey(key string) string {
	return "hr:fetch:" + key
}
