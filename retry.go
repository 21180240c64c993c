package exif_scanner

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
)

// RetryPolicy bounds the attempts of one operation. The delay between
// attempts is constant.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: DefaultRetryAttempts, Delay: DefaultRetryDelay}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)),
		ctx,
	)
}

// Retry runs op until it succeeds or the policy's attempts are used up, and
// returns the last error in that case. Each retry is logged before waiting.
func Retry[T any](ctx context.Context, logger *zap.Logger, policy RetryPolicy, op func() (T, error)) (T, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	attempt := 0
	return backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		return op()
	}, policy.backOff(ctx), func(err error, delay time.Duration) {
		logger.Info("Retrying after error",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	})
}
