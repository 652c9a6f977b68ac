// Package lock provides a Redis-backed host.Locker for registries hosted by
// more than one process.
package lock

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"

	cachekeys "indexfund-api/internal/cache"
	"indexfund-api/pkg/host"
)

var _ host.Locker = (*RedisLocker)(nil)

const defaultRetryInterval = 20 * time.Millisecond

// RedisLocker serializes registry calls across processes with a Redis lock.
type RedisLocker struct {
	rds   *redis.Redis
	ttl   time.Duration
	retry time.Duration
}

// NewRedisLocker returns a locker whose leases expire after ttl.
func NewRedisLocker(rds *redis.Redis, ttl time.Duration) (*RedisLocker, error) {
	if rds == nil {
		return nil, errors.New("lock: redis client is nil")
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisLocker{rds: rds, ttl: ttl, retry: defaultRetryInterval}, nil
}

// Lock blocks until the registry lease is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, registryID string) (func(), error) {
	lk := redis.NewRedisLock(l.rds, cachekeys.RegistryLockKey(registryID))
	lk.SetExpire(leaseSeconds(l.ttl))
	for {
		ok, err := lk.AcquireCtx(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
	return func() {
		if _, err := lk.ReleaseCtx(context.Background()); err != nil {
			logx.Errorf("lock: release registry %s err=%v", registryID, err)
		}
	}, nil
}

func leaseSeconds(ttl time.Duration) int {
	return int(math.Max(1, math.Ceil(ttl.Seconds())))
}
