package entry

import (
	"context"
	"errors"
	"fmt"
)

// Probe calls attempt with increasing attempt numbers until it succeeds, up
// to limit calls. An attempt failing with ErrCollision moves the probe to the
// next attempt; any other error ends it. Once the limit is reached the error
// wraps both ErrTooManyIterations and the last collision.
func Probe[T any](ctx context.Context, limit int, attempt func(ctx context.Context, n int) (T, error)) (T, error) {
	var zero T
	if limit <= 0 {
		return zero, fmt.Errorf("%w: limit %d", ErrTooManyIterations, limit)
	}

	var last error
	for n := range limit {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := attempt(ctx, n)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrCollision) {
			return zero, err
		}
		last = err
	}
	return zero, fmt.Errorf("%w after %d attempts: %w", ErrTooManyIterations, limit, last)
}
