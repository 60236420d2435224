package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"
)

// Policy describes a bounded retry loop with a jittered delay before every attempt.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration

	// Permanent reports errors that must not be retried (block pages, captchas).
	Permanent func(error) bool
}

// DefaultPolicy matches the navigation behaviour of the scrapers: 3 attempts,
// each preceded by a 1-3s randomized pause.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		Jitter:      2 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Stop marks err as non-retryable regardless of the policy's predicate.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, hits a permanent error, the context ends or the
// attempts are used up. The last error is wrapped in the returned error.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := sleep(ctx, p.delay()); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%s aborted after %d attempts: %w", op, attempt-1, lastErr)
			}
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if p.isPermanent(lastErr) {
			return fmt.Errorf("%s failed permanently: %w", op, lastErr)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s aborted: %w", op, lastErr)
		}

		if attempt < attempts {
			log.Printf("[retry] %s failed (attempt %d/%d): %v, retrying", op, attempt, attempts, lastErr)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}

func (p Policy) isPermanent(err error) bool {
	var pe *permanentError
	if errors.As(err, &pe) {
		return true
	}
	return p.Permanent != nil && p.Permanent(err)
}

func (p Policy) delay() time.Duration {
	d := p.BaseDelay
	if p.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
