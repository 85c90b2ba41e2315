package async

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many CPU-heavy functions run at the same time. Callers that
// find the pool saturated wait for a free slot or for their context to end.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// NewPool creates a pool with size slots. Non-positive sizes default to
// runtime.NumCPU().
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size returns the number of slots.
func (p *Pool) Size() int { return p.size }

// Submit schedules fn on the pool and returns immediately. The Future fails
// with the context error if no slot frees up before ctx ends.
func Submit[T any, U any](ctx context.Context, p *Pool, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := newFuture[U]()
	go func() {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			var zero U
			f.complete(zero, err)
			return
		}
		defer p.sem.Release(1)
		f.complete(fn(ctx, param))
	}()
	return f
}

// Do runs fn on the pool and waits for the result or for ctx to end.
// A nil pool runs fn inline.
func Do[T any, U any](ctx context.Context, p *Pool, param T, fn func(context.Context, T) (U, error)) (U, error) {
	if p == nil {
		return fn(ctx, param)
	}
	return Submit(ctx, p, param, fn).AwaitContext(ctx)
}
