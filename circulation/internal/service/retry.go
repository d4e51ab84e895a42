package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/errs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts  = 3
	defaultBaseDelay    = 5 * time.Millisecond
	defaultJitterFactor = 0.3
)

type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

// withRetry runs fn up to maxAttempts times. Only errs.ErrConcurrencyConflict is retried,
// every other result is returned as is. Backoff: 0, base, 2*base, ... plus jitter.
func (s *Service) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < s.retry.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := s.retry.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * s.retry.jitterFactor //nolint:gosec
			select {
			case <-time.After(delay + time.Duration(jitter)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, errs.ErrConcurrencyConflict) {
			return lastErr
		}
		s.log.Debug("concurrency conflict",
			zap.String("op", op), zap.Int("attempt", attempt+1), zap.Error(lastErr))
	}
	s.log.Warn("retries exhausted", zap.String("op", op), zap.Int("attempts", s.retry.maxAttempts))
	return lastErr
}
