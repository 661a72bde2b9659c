package connections

import (
	"context"
	"fmt"
	"time"

	"github.com/infrademo/infrademo/pkg/logger"
)

// RetryPolicy bounds connection-establishment attempts. The policy is a
// fixed constant, not a tunable: every dependency uses the same schedule.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// Multiplier scales the delay after each failed attempt.
	Multiplier int
}

// DefaultRetryPolicy waits 1s, 2s, 4s between four total attempts.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:   3,
	InitialDelay: time.Second,
	Multiplier:   2,
}

// sleep blocks for d or until the context is done. Overridable in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// withRetry runs op up to policy.MaxRetries+1 times, backing off between
// attempts. The wait blocks only the calling goroutine and aborts early when
// ctx is cancelled.
func withRetry(ctx context.Context, log *logger.Logger, policy RetryPolicy, name string, op func() error) error {
	delay := policy.InitialDelay
	var err error
	for attempt := 0; ; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == policy.MaxRetries {
			return err
		}
		log.WithError(err).Warnf("%s connection attempt %d/%d failed, retrying in %s",
			name, attempt+1, policy.MaxRetries+1, delay)
		if werr := sleep(ctx, delay); werr != nil {
			return fmt.Errorf("%v (retry aborted: %w)", err, werr)
		}
		delay *= time.Duration(policy.Multiplier)
	}
}
