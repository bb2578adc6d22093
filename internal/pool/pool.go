package pool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Map runs task for every item with at most limit tasks in flight and returns
// the results in input order. A limit below one runs the tasks sequentially.
// The first error cancels the context passed to the other tasks and is returned.
func Map[T, R any](ctx context.Context, limit int, items []T, task func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	if limit < 1 {
		limit = 1
	}

	results := make([]R, len(items))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, item := range items {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := task(ctx, item)
			if err != nil {
				return err
			}

			results[i] = result

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// PerCPU returns factor workers per logical CPU, at least one.
func PerCPU(factor int) int {
	return max(runtime.NumCPU()*factor, 1)
}
