package platform

import (
	"context"
	"fmt"
)

// bounded runs fn and returns its error, or gives up when ctx is done first.
// An abandoned fn keeps running in its goroutine, so anything it writes to
// must not be read after an error.
func bounded(ctx context.Context, what string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%s abandoned: %w", what, ctx.Err())
	}
}
