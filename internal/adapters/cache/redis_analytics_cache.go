package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	analyticsPrefix        = "beaconiq:analytics:"
	analyticsGenerationKey = analyticsPrefix + "generation"
)

// RedisAnalyticsCache namespaces every entry under a generation number.
// Invalidate bumps the generation so older entries are never read again and
// expire on their own TTL.
type RedisAnalyticsCache struct {
	client *redis.Client
}

func NewRedisAnalyticsCache(client *redis.Client) *RedisAnalyticsCache {
	return &RedisAnalyticsCache{client: client}
}

func (c *RedisAnalyticsCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, false, err
	}
	raw, err := c.client.Get(ctx, analyticsKey(gen, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func (c *RedisAnalyticsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, analyticsKey(gen, key), value, ttl).Err()
}

func (c *RedisAnalyticsCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, analyticsGenerationKey).Err()
}

func (c *RedisAnalyticsCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, analyticsGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func analyticsKey(generation int64, key string) string {
	return analyticsPrefix + strconv.FormatInt(generation, 10) + ":" + key
}
