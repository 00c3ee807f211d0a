package lock

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMemoryLock_ExclusiveUntilUnlock(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLock()

	token, ok, err := l.Lock(ctx, "slot", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = l.Lock(ctx, "slot", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	_, ok, err = l.Lock(ctx, "other", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	require.NoError(t, l.Unlock(ctx, "slot", "not-the-token"))
	_, ok, _ = l.Lock(ctx, "slot", time.Minute)
	assert.False(t, ok, "unlock with a foreign token is ignored")

	require.NoError(t, l.Unlock(ctx, "slot", token))
	_, ok, err = l.Lock(ctx, "slot", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLock_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLock()
	l.clock = func() time.Time { return now }

	_, ok, _ := l.Lock(ctx, "slot", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = l.Lock(ctx, "slot", time.Second)
	assert.True(t, ok, "expired lock can be taken over")
}

func TestAcquire_StaleReleaseKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLock()
	l.clock = func() time.Time { return now }

	releaseA, err := Acquire(ctx, l, "slot", 10*time.Millisecond, 0, time.Millisecond)
	require.NoError(t, err)

	// A overruns its TTL and B takes the slot over
	now = now.Add(20 * time.Millisecond)
	releaseB, err := Acquire(ctx, l, "slot", time.Minute, 0, time.Millisecond)
	require.NoError(t, err)

	releaseA()
	_, ok, err := l.Lock(ctx, "slot", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "late release by A must not free the lock B holds")

	releaseB()
	_, ok, err = l.Lock(ctx, "slot", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAcquire_SerialisesHolders(t *testing.T) {
	l := NewMemoryLock()
	var inside, maxInside int32

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			release, err := Acquire(ctx, l, "slot", time.Second, time.Second, time.Millisecond)
			if err != nil {
				return err
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), maxInside)
}

func TestAcquire_GivesUp(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLock()
	_, ok, _ := l.Lock(ctx, "slot", time.Minute)
	require.True(t, ok)

	_, err := Acquire(ctx, l, "slot", time.Minute, 5*time.Millisecond, time.Millisecond)
	assert.ErrorIs(t, err, ErrNotAcquired)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Acquire(cancelled, l, "slot", time.Minute, time.Minute, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisLock(t *testing.T) {
	addr := os.Getenv("UNICONSULT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("UNICONSULT_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	a, err := NewRedisLock(ctx, RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer a.Close()
	b, err := NewRedisLock(ctx, RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer b.Close()

	key := "test:" + uuid.NewString()

	tokenA, ok, err := a.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = b.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// b never held the key, so its unlock must not release a's lock
	require.NoError(t, b.Unlock(ctx, key, "b:stale"))
	_, ok, err = b.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Unlock(ctx, key, tokenA))
	tokenB, ok, err := b.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// a's old token no longer matches once b holds the key
	require.NoError(t, a.Unlock(ctx, key, tokenA))
	_, ok, err = a.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Unlock(ctx, key, tokenB))
}
