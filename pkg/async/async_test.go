package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authcore/pkg/async"
)

func TestPool(t *testing.T) {
	t.Parallel()

	t.Run("default size", func(t *testing.T) {
		t.Parallel()
		assert.Positive(t, async.NewPool(0).Size())
		assert.Equal(t, 3, async.NewPool(3).Size())
	})

	t.Run("bounds concurrency", func(t *testing.T) {
		t.Parallel()
		pool := async.NewPool(2)

		var running, peak atomic.Int32
		work := func(context.Context, int) (int, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
			return 0, nil
		}

		futures := make([]*async.Future[int], 0, 8)
		for i := range 8 {
			futures = append(futures, async.Submit(context.Background(), pool, i, work))
		}
		for _, f := range futures {
			_, err := f.AwaitContext(context.Background())
			require.NoError(t, err)
		}
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("saturated pool honours context", func(t *testing.T) {
		t.Parallel()
		pool := async.NewPool(1)
		release := make(chan struct{})
		started := make(chan struct{})

		blocker := async.Submit(context.Background(), pool, 0, func(context.Context, int) (int, error) {
			close(started)
			<-release
			return 0, nil
		})
		<-started

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := async.Do(ctx, pool, 1, func(context.Context, int) (int, error) { return 1, nil })
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		close(release)
		_, err = blocker.AwaitContext(context.Background())
		require.NoError(t, err)
	})

	t.Run("propagates error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		_, err := async.Do(context.Background(), async.NewPool(1), "x", func(context.Context, string) (int, error) {
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context skips work", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var called atomic.Bool
		_, err := async.Do(ctx, async.NewPool(1), 1, func(context.Context, int) (int, error) {
			called.Store(true)
			return 1, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called.Load())
	})

	t.Run("nil pool runs inline", func(t *testing.T) {
		t.Parallel()
		res, err := async.Do(context.Background(), nil, "abc", func(_ context.Context, s string) (int, error) {
			return len(s), nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, res)
	})
}
