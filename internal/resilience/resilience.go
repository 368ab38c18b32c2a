// Package resilience guards calls to external services with a circuit breaker
// and retries with exponential backoff.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sony/gobreaker"
)

var (
	// ErrCircuitOpen indicates the circuit breaker is open.
	ErrCircuitOpen = gobreaker.ErrOpenState
	// ErrExhaustedRetries indicates retry attempts were exhausted.
	ErrExhaustedRetries = errors.New("retry attempts exhausted")
)

// CircuitBreakerConfig holds configuration for a circuit breaker.
type CircuitBreakerConfig struct {
	Name string
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int
	// OpenTimeout is how long the circuit stays open before a trial call is let through.
	OpenTimeout time.Duration
	// IsFailure decides which errors count against the circuit. Nil counts every error.
	IsFailure func(error) bool
	Logger    *slog.Logger
}

// CircuitBreaker wraps gobreaker with context-aware execution.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewCircuitBreaker creates a circuit breaker, filling unset fields with defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	log := cfg.Logger.With("component", "circuit_breaker")

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.MaxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	if cfg.IsFailure != nil {
		settings.IsSuccessful = func(err error) bool {
			return err == nil || !cfg.IsFailure(err)
		}
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs operation through the circuit breaker.
func (b *CircuitBreaker) Execute(ctx context.Context, operation func(context.Context) error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, operation(ctx)
	})
	return err
}

// State returns the breaker state as "closed", "half-open" or "open".
func (b *CircuitBreaker) State() string {
	return b.cb.State().String()
}

// RetryConfig holds configuration for retry operations.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxJitter adds up to this much random delay to each wait.
	MaxJitter time.Duration
	// IsPermanent stops retrying on errors that cannot succeed on a later attempt.
	IsPermanent func(error) bool
	// RetryAfter returns the wait a remote service asked for, or zero to use the backoff.
	// A requested wait is not capped by MaxInterval.
	RetryAfter func(error) time.Duration
	Logger     *slog.Logger
}

// DefaultRetryConfig returns a default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxJitter:       50 * time.Millisecond,
	}
}

// WithRetry executes operation with exponential backoff. Fewer than two attempts
// runs the operation once and returns its error unchanged.
func WithRetry(ctx context.Context, operation func(context.Context) error, cfg RetryConfig) error {
	if cfg.MaxAttempts <= 1 {
		return operation(ctx)
	}

	retryable := func(err error) bool {
		if errors.Is(err, ErrCircuitOpen) {
			return false
		}
		return cfg.IsPermanent == nil || !cfg.IsPermanent(err)
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	backoff := retry.BackOffDelay
	if cfg.MaxJitter > 0 {
		backoff = retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)
	}
	delayType := func(n uint, err error, c *retry.Config) time.Duration {
		if cfg.RetryAfter != nil {
			if d := cfg.RetryAfter(err); d > 0 {
				return d
			}
		}
		d := backoff(n, err, c)
		if cfg.MaxInterval > 0 && d > cfg.MaxInterval {
			d = cfg.MaxInterval
		}
		return d
	}

	attempts := 0
	err := retry.Do(
		func() error {
			attempts++
			return operation(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(uint(cfg.MaxAttempts)),
		retry.Delay(cfg.InitialInterval),
		retry.MaxJitter(cfg.MaxJitter),
		retry.DelayType(delayType),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			cfg.Logger.DebugContext(ctx, "Operation failed, retrying",
				"attempt", n+1, "max_attempts", cfg.MaxAttempts, "error", err)
		}),
	)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("retry abandoned: %w", ctx.Err())
	case attempts >= cfg.MaxAttempts && retryable(err):
		return fmt.Errorf("%w after %d attempts: %w", ErrExhaustedRetries, attempts, err)
	default:
		return err
	}
}
