//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatepass/internal/pass/store"
	"gatepass/pkg/testutil/containers"
)

type RedisExpiryCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *store.RedisExpiryCache
}

func TestRedisExpiryCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisExpiryCacheSuite))
}

func (s *RedisExpiryCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = store.NewRedisExpiryCache(s.redis.Client, time.Minute)
}

func (s *RedisExpiryCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisExpiryCacheSuite) TestMissThenHit() {
	ctx := context.Background()

	_, hit, err := s.cache.Get(ctx, 7)
	s.Require().NoError(err)
	s.False(hit)

	expiresAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.cache.Set(ctx, 7, expiresAt))

	got, hit, err := s.cache.Get(ctx, 7)
	s.Require().NoError(err)
	s.True(hit)
	s.True(expiresAt.Equal(got))
}

func (s *RedisExpiryCacheSuite) TestEntriesCarryTTL() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, 9, time.Now()))

	ttl, err := s.redis.Client.TTL(ctx, "gatepass:pass_expiry:9").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisExpiryCacheSuite) TestCorruptEntryIsMiss() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, "gatepass:pass_expiry:3", "not-a-number", time.Minute).Err())

	_, hit, err := s.cache.Get(ctx, 3)
	s.Require().NoError(err)
	s.False(hit)
}
