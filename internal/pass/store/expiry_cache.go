package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	id "gatepass/pkg/domain"
)

const (
	expiryKeyPrefix = "gatepass:pass_expiry:"

	defaultExpiryCacheTTL = time.Hour
)

// RedisExpiryCache caches pass expiries as Unix seconds. Expiries are
// immutable, so entries are never invalidated, only aged out by TTL.
type RedisExpiryCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisExpiryCache(client redis.Cmdable, ttl time.Duration) *RedisExpiryCache {
	if ttl <= 0 {
		ttl = defaultExpiryCacheTTL
	}
	return &RedisExpiryCache{client: client, ttl: ttl}
}

func (c *RedisExpiryCache) Get(ctx context.Context, passID id.PassID) (time.Time, bool, error) {
	raw, err := c.client.Get(ctx, expiryKey(passID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("get pass expiry: %w", err)
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// A corrupt entry is a miss; the store is authoritative.
		return time.Time{}, false, nil
	}
	return time.Unix(secs, 0).UTC(), true, nil
}

func (c *RedisExpiryCache) Set(ctx context.Context, passID id.PassID, expiresAt time.Time) error {
	if err := c.client.Set(ctx, expiryKey(passID), expiresAt.Unix(), c.ttl).Err(); err != nil {
		return fmt.Errorf("set pass expiry: %w", err)
	}
	return nil
}

func expiryKey(passID id.PassID) string {
	return expiryKeyPrefix + passID.String()
}
