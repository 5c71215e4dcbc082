package apiclient

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy retries transient failures with a fixed backoff schedule.
// Each call gets its own attempt budget; budgets never carry over.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// Backoff returns the delay before retrying after the given
	// zero-based failed attempt.
	Backoff func(attempt int) time.Duration
}

// DefaultRetryPolicy matches the ledger service's expectations:
// 5 attempts with exponential backoff (1s, 2s, 4s, 8s, 16s).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Backoff: func(attempt int) time.Duration {
			return (1 << attempt) * time.Second
		},
	}
}

// Do runs fn until it succeeds, fails non-transiently, or the attempt
// budget is exhausted. Backoff sleeps honor ctx cancellation.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", op, ctx.Err())
			case <-time.After(p.Backoff(attempt - 1)):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return fmt.Errorf("%s: %w", op, lastErr)
		}
	}
	return fmt.Errorf("%s: %d attempts exhausted: %w", op, p.MaxAttempts, lastErr)
}
