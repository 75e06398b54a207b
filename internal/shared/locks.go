package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CalcLockKey builds the redis key serialising standard cost calculation
// runs for a fiscal period. Two concurrent Calculate calls for the same
// period must not interleave result upserts.
func CalcLockKey(periodID int64) string {
	return fmt.Sprintf("costing:period:%d:lock", periodID)
}

// PeriodLock acquires a best-effort advisory lock for a period-scoped
// critical section.
type PeriodLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPeriodLock constructs a lock manager.
func NewPeriodLock(client *redis.Client, ttl time.Duration) *PeriodLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PeriodLock{client: client, ttl: ttl}
}

// Acquire takes the lock, returning a release func, or false when held
// elsewhere. A nil client degrades to a no-op so tests and single-node
// deployments run without redis.
func (l *PeriodLock) Acquire(ctx context.Context, periodID int64) (func(), bool, error) {
	if l == nil || l.client == nil {
		return func() {}, true, nil
	}
	key := CalcLockKey(periodID)
	ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		_ = l.client.Del(context.Background(), key).Err()
	}
	return release, true, nil
}
