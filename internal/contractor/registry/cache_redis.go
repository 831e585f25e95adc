package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pankas/pkg/platform/sentinel"
)

// RedisRowCache shares raw registry rows across instances via Redis.
// Entries expire after the configured TTL; serialization is JSON since
// rows are JSON to begin with.
type RedisRowCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRowCache wraps a connected go-redis client.
func NewRedisRowCache(client *redis.Client, ttl time.Duration) *RedisRowCache {
	return &RedisRowCache{client: client, ttl: ttl}
}

func redisRowKey(source, companyID string) string {
	return "pankas:rows:" + source + ":" + companyID
}

func (c *RedisRowCache) Find(ctx context.Context, source, companyID string) ([]RawRecord, error) {
	payload, err := c.client.Get(ctx, redisRowKey(source, companyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("row cache get: %w", err)
	}
	var rows []RawRecord
	if err := json.Unmarshal(payload, &rows); err != nil {
		// A corrupt entry behaves like a miss; the next Save overwrites it.
		return nil, sentinel.ErrNotFound
	}
	return rows, nil
}

func (c *RedisRowCache) Save(ctx context.Context, source, companyID string, rows []RawRecord) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("row cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, redisRowKey(source, companyID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("row cache set: %w", err)
	}
	return nil
}
