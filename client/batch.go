package client

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Batch runs the given functions concurrently and waits for all of them.
// The first failure aborts the wait and is returned classified; use
// SettleAll when per-item outcomes matter.
func Batch(ctx context.Context, fns ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			return fn(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return AsError(err)
	}
	return nil
}

// All runs the functions concurrently and returns their results in input
// order. A single failure fails the whole batch.
func All[T any](ctx context.Context, fns []func(context.Context) (T, error)) ([]T, error) {
	results := make([]T, len(fns))
	g, gctx := errgroup.WithContext(ctx)
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			v, err := fn(gctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, AsError(err)
	}
	return results, nil
}

// Outcome is the per-item result of a settle-all batch.
type Outcome[T any] struct {
	Index int
	Value T
	Err   *Error
}

// SettleAll runs the functions concurrently and waits for every one of them
// to finish, successes and failures alike. The returned slice always has
// one entry per input, in input order regardless of completion order.
func SettleAll[T any](ctx context.Context, fns []func(context.Context) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(fns))
	var g errgroup.Group
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			v, err := fn(ctx)
			outcomes[i] = Outcome[T]{Index: i, Value: v, Err: AsError(err)}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return outcomes
}
