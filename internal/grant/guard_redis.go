package grant

import (
	"context"
	"time"

	"eventops-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisOnceGuard backs the fulfillment guard with a redis SET NX script so
// concurrent attempts on different nodes agree on a single winner.
type RedisOnceGuard struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisOnceGuard(rdb *redis.Client) *RedisOnceGuard {
	return &RedisOnceGuard{rdb: rdb, prefix: "eventops:"}
}

func (g *RedisOnceGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return utils.AcquireOnce(ctx, g.rdb, g.prefix+key, ttl)
}

func (g *RedisOnceGuard) Release(ctx context.Context, key string) error {
	return utils.ReleaseOnce(ctx, g.rdb, g.prefix+key)
}
