// Package async provides small, generic helpers for running computations
// concurrently and waiting for their completion.
//
// The package is centred around two primitives:
//
// The generic Future type represents the eventual result of an asynchronous
// operation. A Future is obtained by calling Go, which starts the supplied
// function in its own goroutine and immediately returns a *Future. The caller
// waits for completion with Await, blocks with a bound via AwaitWithTimeout,
// or polls with IsComplete. WaitAll combines several futures of the same
// result type, awaiting each one so no goroutine is abandoned.
//
// ForEach is a bounded fan-out: it runs a worker over a slice with a fixed
// upper bound on simultaneously in-flight executions, collecting per-item
// errors in input order. Its default policy is continue-on-error, which is
// what best-effort cleanup paths want; ForEachFailFast exists for callers
// that need stop-on-first-error semantics.
//
// # Usage
//
//	future := async.Go(ctx, func(ctx context.Context) (int, error) {
//	    return expensiveCall(ctx)
//	})
//	// do other work …
//	n, err := future.Await()
//
//	errs := async.ForEach(ctx, ids, 8, func(ctx context.Context, id string) error {
//	    return cleanup(ctx, id)
//	})
//
// All helpers are context-aware: a pre-cancelled context completes a Future
// with the context error before the callback runs, and ForEachFailFast
// cancels its derived context on the first worker failure.
package async
