package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/roomkit/pkg/lock"
)

func newLocker(t *testing.T) *lock.MemoryLocker {
	t.Helper()
	return lock.NewMemoryLocker(lock.Config{
		AcquireTimeout: 100 * time.Millisecond,
		RetryInterval:  5 * time.Millisecond,
	})
}

func TestMemoryLocker_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("grants a free lock", func(t *testing.T) {
		locker := newLocker(t)

		l, err := locker.Acquire(ctx, "lobby", time.Second)
		require.NoError(t, err)
		assert.Equal(t, "lobby", l.Name())
		require.NoError(t, l.Release(ctx))
	})

	t.Run("contended lock times out", func(t *testing.T) {
		locker := newLocker(t)

		held, err := locker.Acquire(ctx, "lobby", time.Second)
		require.NoError(t, err)
		defer held.Release(ctx)

		_, err = locker.Acquire(ctx, "lobby", time.Second)
		assert.ErrorIs(t, err, lock.ErrLockTimeout)
	})

	t.Run("different names are independent", func(t *testing.T) {
		locker := newLocker(t)

		l1, err := locker.Acquire(ctx, "lobby", time.Second)
		require.NoError(t, err)
		defer l1.Release(ctx)

		l2, err := locker.Acquire(ctx, "kitchen", time.Second)
		require.NoError(t, err)
		defer l2.Release(ctx)
	})

	t.Run("released lock is reacquirable", func(t *testing.T) {
		locker := newLocker(t)

		l1, err := locker.Acquire(ctx, "lobby", time.Second)
		require.NoError(t, err)
		require.NoError(t, l1.Release(ctx))

		l2, err := locker.Acquire(ctx, "lobby", time.Second)
		require.NoError(t, err)
		require.NoError(t, l2.Release(ctx))
	})

	t.Run("expired lock is reacquirable", func(t *testing.T) {
		locker := newLocker(t)

		l1, err := locker.Acquire(ctx, "lobby", 10*time.Millisecond)
		require.NoError(t, err)

		l2, err := locker.Acquire(ctx, "lobby", time.Second)
		require.NoError(t, err)
		defer l2.Release(ctx)

		// Stale holder's release must not free the successor's lock.
		require.NoError(t, l1.Release(ctx))
		_, err = locker.Acquire(ctx, "lobby", time.Second)
		assert.ErrorIs(t, err, lock.ErrLockTimeout)
	})

	t.Run("non-positive ttl falls back to the configured lease", func(t *testing.T) {
		locker := lock.NewMemoryLocker(lock.Config{
			TTL:            20 * time.Millisecond,
			AcquireTimeout: 500 * time.Millisecond,
			RetryInterval:  5 * time.Millisecond,
		})

		_, err := locker.Acquire(ctx, "lobby", 0)
		require.NoError(t, err)

		// The configured lease expires, so a contender gets the lock well
		// inside the acquisition timeout.
		l2, err := locker.Acquire(ctx, "lobby", time.Second)
		require.NoError(t, err)
		require.NoError(t, l2.Release(ctx))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		locker := lock.NewMemoryLocker(lock.Config{
			AcquireTimeout: time.Minute,
			RetryInterval:  5 * time.Millisecond,
		})

		held, err := locker.Acquire(ctx, "lobby", time.Second)
		require.NoError(t, err)
		defer held.Release(ctx)

		cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err = locker.Acquire(cancelCtx, "lobby", time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestLock_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		locker := newLocker(t)

		l, err := locker.Acquire(ctx, "lobby", time.Second)
		require.NoError(t, err)
		require.NoError(t, l.Release(ctx))
		require.NoError(t, l.Release(ctx))
	})
}

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	ctx := context.Background()
	locker := lock.NewMemoryLocker(lock.Config{
		AcquireTimeout: 5 * time.Second,
		RetryInterval:  time.Millisecond,
	})

	var mu sync.Mutex
	inSection := 0
	maxInSection := 0

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			l, err := locker.Acquire(ctx, "lobby", time.Second)
			if err != nil {
				t.Error(err)
				return
			}
			defer l.Release(ctx)

			mu.Lock()
			inSection++
			if inSection > maxInSection {
				maxInSection = inSection
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inSection--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInSection)
}
