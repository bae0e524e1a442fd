// Package retry implements the exponential backoff and per-source circuit
// breaking spec.md §4.3 requires: 1s/2s/4s/8s/16s backoff, 5 attempts,
// transient/non-transient classification via errs.Transient. Grounded on
// the teacher's infra/breakers.Breaker (sony/gobreaker wrapper), unlike
// the teacher's, this one is actually wired into the connector call path.
package retry

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker"

	"github.com/paul-heyse/submarket-screen/internal/errs"
)

// Backoff is the fixed delay schedule spec.md §4.3 names.
var Backoff = []time.Duration{
	1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
}

// MaxAttempts bounds how many times Do calls fn (the first call plus up
// to four retries, which wait Backoff[0] through Backoff[3]).
const MaxAttempts = 5

// Sleeper matches runtime.Clock's Sleep signature without importing
// runtime, avoiding a dependency cycle (runtime may one day want retry).
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Breaker wraps a sony/gobreaker.CircuitBreaker per source, opening after
// 3 consecutive failures or a >5% failure rate over a 20+ request window
// — the same thresholds as the teacher's infra/breakers.New.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

// NewBreaker constructs a named circuit breaker for one source.
func NewBreaker(name string) *Breaker {
	st := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker[any](st)}
}

// State reports the breaker's current state for manifest/health reporting.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

// Do runs fn under the circuit breaker with exponential backoff retry on
// transient errors. Non-transient errors and a tripped breaker return
// immediately without retrying. Context cancellation at any suspension
// point returns errs.Cancelled.
func Do(ctx context.Context, b *Breaker, sleeper Sleeper, source string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return &errs.Cancelled{Stage: "retry:" + source}
		}
		_, err := b.cb.Execute(func() (any, error) {
			return nil, fn(ctx)
		})
		if err == nil {
			return nil
		}
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return &errs.DataSourceError{Source: source, Reason: "circuit breaker open"}
		}
		lastErr = err
		if !errs.Transient(err) {
			return err
		}
		if attempt == MaxAttempts-1 {
			break
		}
		if sleepErr := sleeper.Sleep(ctx, Backoff[attempt]); sleepErr != nil {
			return &errs.Cancelled{Stage: "retry-backoff:" + source}
		}
	}
	return lastErr
}
