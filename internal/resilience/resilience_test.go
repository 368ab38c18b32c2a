package resilience

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("connection reset")

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := WithRetry(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		}, fastRetry(3))
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := WithRetry(context.Background(), func(context.Context) error {
			calls++
			return errTransient
		}, fastRetry(2))
		assert.ErrorIs(t, err, ErrExhaustedRetries)
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 2, calls)
	})

	t.Run("single attempt returns error unchanged", func(t *testing.T) {
		t.Parallel()
		err := WithRetry(context.Background(), func(context.Context) error { return errTransient }, RetryConfig{})
		assert.Equal(t, errTransient, err)
	})

	t.Run("permanent errors stop retrying", func(t *testing.T) {
		t.Parallel()
		permanent := errors.New("chat not found")
		cfg := fastRetry(5)
		cfg.IsPermanent = func(err error) bool { return errors.Is(err, permanent) }
		calls := 0
		err := WithRetry(context.Background(), func(context.Context) error {
			calls++
			return permanent
		}, cfg)
		assert.ErrorIs(t, err, permanent)
		assert.NotErrorIs(t, err, ErrExhaustedRetries)
		assert.Equal(t, 1, calls)
	})

	t.Run("jitter", func(t *testing.T) {
		t.Parallel()
		cfg := fastRetry(2)
		cfg.MaxJitter = time.Millisecond
		calls := 0
		err := WithRetry(context.Background(), func(context.Context) error {
			calls++
			if calls == 1 {
				return errTransient
			}
			return nil
		}, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("server requested wait replaces backoff", func(t *testing.T) {
		t.Parallel()
		errThrottled := errors.New("too many requests")
		cfg := RetryConfig{
			MaxAttempts:     2,
			InitialInterval: time.Hour,
			MaxInterval:     time.Hour,
			RetryAfter: func(err error) time.Duration {
				if errors.Is(err, errThrottled) {
					return time.Millisecond
				}
				return 0
			},
		}
		calls := 0
		start := time.Now()
		err := WithRetry(context.Background(), func(context.Context) error {
			calls++
			if calls == 1 {
				return errThrottled
			}
			return nil
		}, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Less(t, time.Since(start), time.Minute)
	})

	t.Run("requested wait is not capped by max interval", func(t *testing.T) {
		t.Parallel()
		cfg := RetryConfig{
			MaxAttempts:     2,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
			RetryAfter:      func(error) time.Duration { return 30 * time.Millisecond },
		}
		calls := 0
		start := time.Now()
		err := WithRetry(context.Background(), func(context.Context) error {
			calls++
			if calls == 1 {
				return errTransient
			}
			return nil
		}, cfg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("retries are logged through the configured logger", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		cfg := fastRetry(2)
		cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
			With("component", "telegram_adapter")

		err := WithRetry(context.Background(), func(context.Context) error { return errTransient }, cfg)
		require.ErrorIs(t, err, ErrExhaustedRetries)
		assert.Contains(t, buf.String(), "Operation failed, retrying")
		assert.Contains(t, buf.String(), "component=telegram_adapter")
	})

	t.Run("cancelled context abandons retries", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		err := WithRetry(ctx, func(context.Context) error {
			cancel()
			return errTransient
		}, fastRetry(5))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	ignored := errors.New("bad request")
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "test",
		MaxFailures: 2,
		OpenTimeout: time.Hour,
		IsFailure:   func(err error) bool { return !errors.Is(err, ignored) },
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return ignored }), ignored)
	}
	assert.Equal(t, "closed", cb.State())

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return errTransient }), errTransient)
	}
	assert.Equal(t, "open", cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}
