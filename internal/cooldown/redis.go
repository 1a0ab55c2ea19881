package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "budget:cooldown:"

// RedisStore shares cooldowns between API instances. The window is enforced
// by key expiry on the redis server, so the boundary follows redis' clock
// rather than the caller's now.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a RedisStore on an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: redisKeyPrefix}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) redisKey(key Key) string {
	return fmt.Sprintf("%s%d:%s", s.prefix, key.UserID, key.Label)
}

// Reserve implements Store with SET NX PX
func (s *RedisStore) Reserve(ctx context.Context, key Key, now time.Time, window time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.redisKey(key), now.UnixMilli(), window).Result()
	if err != nil {
		return false, fmt.Errorf("reserve cooldown: %w", err)
	}
	return ok, nil
}

// Release implements Store
func (s *RedisStore) Release(ctx context.Context, key Key) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("release cooldown: %w", err)
	}
	return nil
}
