package utils

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

type RetryConfig struct {
	MaxRetries     int           // retries after the first attempt
	InitialBackoff time.Duration // doubles each retry
	MaxBackoff     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
	}
}

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. WithRetry returns the wrapped
// error unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// WithRetry runs fn until it succeeds, returns a Permanent error, the context
// ends, or MaxRetries is exhausted.
func WithRetry[T any](ctx context.Context, config RetryConfig, logger *zap.Logger, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		out, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Debug("retry succeeded", zap.String("operation", operation), zap.Int("attempt", attempt+1))
			}
			return out, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}

		lastErr = err
		logger.Warn("attempt failed",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", config.MaxRetries+1),
			zap.Error(err),
		)

		if attempt < config.MaxRetries {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(CalculateBackoff(config, attempt)):
			}
		}
	}

	return zero, fmt.Errorf("%w for %s: %w", ErrMaxRetriesExceeded, operation, lastErr)
}

// CalculateBackoff is initial * 2^attempt capped at MaxBackoff.
func CalculateBackoff(config RetryConfig, attempt int) time.Duration {
	backoff := float64(config.InitialBackoff) * math.Pow(2, float64(attempt))
	if config.MaxBackoff > 0 && backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}
	return time.Duration(backoff)
}
