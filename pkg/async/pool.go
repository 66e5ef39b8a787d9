package async

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs fn once per item with at most limit executions in flight at a
// time. It returns a slice of per-item errors aligned to input order and only
// after every started worker has finished. One item's failure never cancels
// its siblings; callers that want fail-fast semantics should use
// ForEachFailFast instead.
//
// A limit below 1 is treated as 1 to keep the call sequential rather than
// unbounded.
func ForEach[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) []error {
	if len(items) == 0 {
		return nil
	}

	errs := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(max(limit, 1))

	for i, item := range items {
		g.Go(func() error {
			errs[i] = fn(ctx, item)
			return nil
		})
	}

	// Worker errors are captured per slot above, never returned to the group.
	_ = g.Wait()

	return errs
}

// ForEachFailFast runs fn once per item with at most limit executions in
// flight, cancelling the shared context and returning the first error as soon
// as any worker fails. In-flight workers still run to completion before the
// call returns.
func ForEachFailFast[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) error {
	if len(items) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	for _, item := range items {
		g.Go(func() error {
			return fn(ctx, item)
		})
	}

	return g.Wait()
}
