// Package retry provides a small bounded-retry helper.
//
// Mutations against the backends are never retried (a duplicate create is
// worse than a reported failure); the helper exists for read-side existence
// checks that can fail transiently.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Do runs op up to attempts times, sleeping delay between tries and doubling
// it each time. Context cancellation is respected between attempts. Errors
// wrapped with Fatal are returned immediately.
func Do(ctx context.Context, attempts int, delay time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if IsFatal(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(delay):
			delay *= 2
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// FatalError marks an error as non-retryable.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err so Do stops retrying immediately.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err was marked with Fatal.
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
