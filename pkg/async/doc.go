// Package async runs work off the request goroutine.
//
// Pool bounds how many functions run at once; Submit hands back a Future and
// Do waits on it. The password package pushes bcrypt through a Pool so
// hashing cost is capped regardless of request concurrency.
//
//	pool := async.NewPool(runtime.NumCPU())
//	hash, err := async.Do(ctx, pool, pw, func(ctx context.Context, pw string) (string, error) {
//		return hasher.Hash(pw)
//	})
package async
