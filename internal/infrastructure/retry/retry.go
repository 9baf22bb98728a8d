package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "preventa/internal/errors"
)

const DefaultInitialInterval = 100 * time.Millisecond

// OnConflict runs op up to attempts times with jittered exponential backoff
// while it fails with ConcurrencyConflictError. Any other error is returned
// at once. After the last attempt the conflict itself is returned.
func OnConflict(ctx context.Context, logger *zap.Logger, attempts int, initial time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initial
	policy.RandomizationFactor = 0.2

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(attempts-1)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if _, ok := apperrors.IsConcurrencyConflictError(err); ok {
			return err
		}
		return backoff.Permanent(err)
	}, b, func(err error, wait time.Duration) {
		logger.Warn("concurrency conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
}
