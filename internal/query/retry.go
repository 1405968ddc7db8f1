package query

import (
	"context"
	"strings"
	"time"
)

// RetryablePredicate decides whether an error from the remote service is
// transient.
type RetryablePredicate func(error) bool

// QuotaMessage treats any error whose message mentions "quota" as retryable.
func QuotaMessage(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "quota")
}

// AnyOf returns a predicate that is true when any of preds is.
func AnyOf(preds ...RetryablePredicate) RetryablePredicate {
	return func(err error) bool {
		for _, p := range preds {
			if p != nil && p(err) {
				return true
			}
		}
		return false
	}
}

// Backoff returns the wait after zero-based attempt n: 2^(n+1) units.
func Backoff(attempt int, unit time.Duration) time.Duration {
	return time.Duration(1<<uint(attempt+1)) * unit
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
