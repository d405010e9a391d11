package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig configures retry behavior with exponential backoff
type RetryConfig struct {
	MaxRetries int           `koanf:"max_retries"` // Retry attempts after the first call (0 disables retries)
	BaseDelay  time.Duration `koanf:"base_delay"`  // Delay before the first retry
	MaxDelay   time.Duration `koanf:"max_delay"`   // Upper bound for any single delay
	Multiplier float64       `koanf:"multiplier"`  // Exponential backoff multiplier
	Jitter     bool          `koanf:"jitter"`      // Add up to ±10% random jitter
}

// RetryResult contains information about the retry operation
type RetryResult struct {
	Attempts      int
	TotalDuration time.Duration
	LastError     error
	Success       bool
}

// DefaultRetryConfig returns the configuration used for upstream lookups.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// RetryWithBackoff retries operation on every error.
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation func() error, logger zerolog.Logger) RetryResult {
	return RetryIf(ctx, config, operation, func(error) bool { return true }, logger)
}

// RetryIf executes operation with exponential backoff, retrying only errors
// for which isRetryable returns true.
func RetryIf(ctx context.Context, config RetryConfig, operation func() error, isRetryable func(error) bool, logger zerolog.Logger) RetryResult {
	startTime := time.Now()
	var result RetryResult

	// The first attempt always runs.
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		err := operation()
		if err == nil {
			result.Success = true
			result.LastError = nil
			result.TotalDuration = time.Since(startTime)
			if attempt > 0 {
				logger.Info().
					Int("attempts", result.Attempts).
					Dur("total_duration", result.TotalDuration).
					Msg("operation succeeded after retry")
			}
			return result
		}
		result.LastError = err

		if !isRetryable(err) {
			result.TotalDuration = time.Since(startTime)
			return result
		}

		if attempt >= config.MaxRetries {
			result.TotalDuration = time.Since(startTime)
			logger.Warn().Err(err).
				Int("attempts", result.Attempts).
				Dur("total_duration", result.TotalDuration).
				Msg("operation failed, retries exhausted")
			return result
		}

		delay := calculateDelay(config, attempt)
		logger.Warn().Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", config.MaxRetries+1).
			Dur("delay", delay).
			Msg("operation failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			result.LastError = errors.Join(err, ctx.Err())
			result.TotalDuration = time.Since(startTime)
			return result
		case <-timer.C:
		}
	}

	result.TotalDuration = time.Since(startTime)
	return result
}

// calculateDelay calculates the delay for the next retry attempt using exponential backoff
func calculateDelay(config RetryConfig, attempt int) time.Duration {
	delay := float64(config.BaseDelay) * math.Pow(config.Multiplier, float64(attempt))

	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	if config.Jitter {
		jitterRange := delay * 0.1
		delay += (rand.Float64() - 0.5) * 2 * jitterRange
		if delay < 0 {
			delay = float64(config.BaseDelay)
		}
	}

	return time.Duration(delay)
}
