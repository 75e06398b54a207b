package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) *PeriodLock {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPeriodLock(client, time.Minute)
}

func TestPeriodLockSerialisesPerPeriod(t *testing.T) {
	lock := newTestLock(t)
	ctx := context.Background()

	release, ok, err := lock.Acquire(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = lock.Acquire(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire for the same period must fail")

	release2, ok, err := lock.Acquire(ctx, 8)
	require.NoError(t, err)
	assert.True(t, ok, "another period must not be blocked")
	release2()

	release()

	release3, ok, err := lock.Acquire(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok, "release must free the period")
	release3()
}

func TestPeriodLockNilClientIsNoOp(t *testing.T) {
	lock := NewPeriodLock(nil, time.Minute)

	release, ok, err := lock.Acquire(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)
	release()

	release, ok, err = lock.Acquire(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok, "no-op lock never contends")
	release()
}
