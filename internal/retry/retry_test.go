package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paul-heyse/submarket-screen/internal/errs"
)

type instantSleeper struct {
	calls []time.Duration
}

func (s *instantSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

type cancelledSleeper struct{}

func (cancelledSleeper) Sleep(ctx context.Context, d time.Duration) error {
	return context.Canceled
}

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	b := NewBreaker("t-success")
	sleeper := &instantSleeper{}
	calls := 0
	err := Do(context.Background(), b, sleeper, "t-success", func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.calls)
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	b := NewBreaker("t-retry")
	sleeper := &instantSleeper{}
	calls := 0
	err := Do(context.Background(), b, sleeper, "t-retry", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &errs.NetworkError{Source: "t-retry", Cause: context.DeadlineExceeded}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, sleeper.calls, 2)
	assert.Equal(t, []time.Duration{Backoff[0], Backoff[1]}, sleeper.calls)
}

func TestDo_NonTransientErrorReturnsImmediately(t *testing.T) {
	b := NewBreaker("t-nontransient")
	sleeper := &instantSleeper{}
	calls := 0
	err := Do(context.Background(), b, sleeper, "t-nontransient", func(ctx context.Context) error {
		calls++
		return &errs.DataValidationError{Source: "t-nontransient", Field: "x", Reason: "bad"}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.calls)
}

func TestDo_ExhaustsMaxAttempts(t *testing.T) {
	b := NewBreaker("t-exhaust")
	sleeper := &instantSleeper{}
	calls := 0
	err := Do(context.Background(), b, sleeper, "t-exhaust", func(ctx context.Context) error {
		calls++
		return &errs.NetworkError{Source: "t-exhaust", Cause: context.DeadlineExceeded}
	})
	assert.Error(t, err)
	assert.Equal(t, MaxAttempts, calls)
	assert.Len(t, sleeper.calls, MaxAttempts-1)
}

func TestDo_ContextCancelledBeforeStart(t *testing.T) {
	b := NewBreaker("t-cancel-start")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, b, &instantSleeper{}, "t-cancel-start", func(ctx context.Context) error {
		t.Fatal("fn should not be called when context is already cancelled")
		return nil
	})
	assert.True(t, errs.IsCancelled(err))
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	b := NewBreaker("t-cancel-backoff")
	calls := 0
	err := Do(context.Background(), b, cancelledSleeper{}, "t-cancel-backoff", func(ctx context.Context) error {
		calls++
		return &errs.NetworkError{Source: "t-cancel-backoff", Cause: context.DeadlineExceeded}
	})
	assert.True(t, errs.IsCancelled(err))
	assert.Equal(t, 1, calls)
}

func TestDo_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker("t-breaker")
	sleeper := &instantSleeper{}
	failing := func(ctx context.Context) error {
		return &errs.NetworkError{Source: "t-breaker", Cause: context.DeadlineExceeded}
	}
	// Drive the breaker open with enough failing Do() calls that each
	// exhaust their own retry budget.
	for i := 0; i < 5; i++ {
		_ = Do(context.Background(), b, sleeper, "t-breaker", failing)
	}
	err := Do(context.Background(), b, sleeper, "t-breaker", failing)
	assert.Error(t, err)
}
