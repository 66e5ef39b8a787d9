package async_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/roomkit/pkg/async"
)

func TestGo(t *testing.T) {
	ctx := context.Background()

	t.Run("returns result", func(t *testing.T) {
		f := async.Go(ctx, func(context.Context) (int, error) {
			return 42, nil
		})

		v, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("returns error", func(t *testing.T) {
		wantErr := errors.New("boom")
		f := async.Go(ctx, func(context.Context) (int, error) {
			return 0, wantErr
		})

		_, err := f.Await()
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("pre-cancelled context short-circuits", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		var ran atomic.Bool
		f := async.Go(cancelled, func(context.Context) (int, error) {
			ran.Store(true)
			return 1, nil
		})

		_, err := f.Await()
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ran.Load())
	})

	t.Run("await with timeout", func(t *testing.T) {
		release := make(chan struct{})
		f := async.Go(ctx, func(context.Context) (int, error) {
			<-release
			return 1, nil
		})

		_, err := f.AwaitWithTimeout(10 * time.Millisecond)
		assert.ErrorIs(t, err, async.ErrTimeout)
		assert.False(t, f.IsComplete())

		close(release)
		v, err := f.AwaitWithTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		assert.True(t, f.IsComplete())
	})
}

func TestWaitAll(t *testing.T) {
	ctx := context.Background()

	t.Run("collects results in order", func(t *testing.T) {
		f1 := async.Go(ctx, func(context.Context) (string, error) { return "a", nil })
		f2 := async.Go(ctx, func(context.Context) (string, error) {
			time.Sleep(5 * time.Millisecond)
			return "b", nil
		})

		results, err := async.WaitAll(f1, f2)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, results)
	})

	t.Run("awaits every future even after an error", func(t *testing.T) {
		wantErr := errors.New("first")
		var second atomic.Bool

		f1 := async.Go(ctx, func(context.Context) (int, error) { return 0, wantErr })
		f2 := async.Go(ctx, func(context.Context) (int, error) {
			time.Sleep(5 * time.Millisecond)
			second.Store(true)
			return 2, nil
		})

		results, err := async.WaitAll(f1, f2)
		assert.ErrorIs(t, err, wantErr)
		assert.True(t, second.Load())
		assert.Equal(t, 2, results[1])
	})
}

func TestForEach(t *testing.T) {
	ctx := context.Background()

	t.Run("errors aligned to input order", func(t *testing.T) {
		items := []int{0, 1, 2, 3}
		wantErr := errors.New("odd")

		errs := async.ForEach(ctx, items, 2, func(_ context.Context, n int) error {
			if n%2 == 1 {
				return wantErr
			}
			return nil
		})

		require.Len(t, errs, 4)
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], wantErr)
		assert.NoError(t, errs[2])
		assert.ErrorIs(t, errs[3], wantErr)
	})

	t.Run("never exceeds the concurrency limit", func(t *testing.T) {
		const limit = 3
		var inFlight, peak atomic.Int64

		items := make([]int, 50)
		async.ForEach(ctx, items, limit, func(context.Context, int) error {
			cur := inFlight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			return nil
		})

		assert.LessOrEqual(t, peak.Load(), int64(limit))
	})

	t.Run("one failure does not stop siblings", func(t *testing.T) {
		var completed atomic.Int64
		items := []int{0, 1, 2, 3, 4}

		errs := async.ForEach(ctx, items, 2, func(_ context.Context, n int) error {
			defer completed.Add(1)
			if n == 0 {
				return errors.New("boom")
			}
			return nil
		})

		assert.Equal(t, int64(5), completed.Load())
		assert.Error(t, errs[0])
	})

	t.Run("empty input", func(t *testing.T) {
		errs := async.ForEach(ctx, nil, 4, func(context.Context, int) error {
			t.Fatal("worker must not run")
			return nil
		})
		assert.Nil(t, errs)
	})
}

func TestForEachFailFast(t *testing.T) {
	ctx := context.Background()

	t.Run("returns first error and cancels context", func(t *testing.T) {
		wantErr := errors.New("fatal")
		var cancelledSeen atomic.Bool
		var mu sync.Mutex
		started := 0

		err := async.ForEachFailFast(ctx, []int{0, 1, 2, 3, 4, 5, 6, 7}, 1, func(ctx context.Context, n int) error {
			mu.Lock()
			started++
			mu.Unlock()
			if n == 0 {
				return wantErr
			}
			if ctx.Err() != nil {
				cancelledSeen.Store(true)
			}
			return ctx.Err()
		})

		assert.ErrorIs(t, err, wantErr)
		// With limit 1 the group stops scheduling after the failure is
		// observed; workers that do run see the cancelled context.
		if started > 1 {
			assert.True(t, cancelledSeen.Load())
		}
	})

	t.Run("nil on success", func(t *testing.T) {
		err := async.ForEachFailFast(ctx, []int{1, 2, 3}, 2, func(context.Context, int) error {
			return nil
		})
		assert.NoError(t, err)
	})
}
