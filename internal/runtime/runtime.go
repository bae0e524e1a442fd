// Package runtime bundles the collaborators every other package needs
// — cache, rate limiter, config, logger, clock — into one struct that is
// passed explicitly rather than reached for as package-level state
// (Design Notes §9). Tests build a Runtime with a fake Clock instead of
// monkey-patching globals. The Runtime carries no HTTP transport; connector
// tests run against local httptest servers.
package runtime

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/paul-heyse/submarket-screen/internal/config"
)

// Clock abstracts time so tests can control TTL expiry and backoff sleeps
// deterministically.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the production Clock backed by the real wall clock. It
// respects context cancellation during Sleep.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cache is the tier-agnostic contract internal/cache satisfies; declared
// here so runtime.Runtime can hold one without importing internal/cache
// (which would create an import cycle, since cache imports runtime for
// CacheStats).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	Stats() CacheStats
}

// CacheStats mirrors domain.CacheStatsSnapshot without importing domain,
// keeping runtime a low-level, dependency-light package.
type CacheStats struct {
	HotEntries, HotBytes             int64
	HotHits, HotMisses               int64
	WarmHits, WarmMisses             int64
	ColdHits, ColdMisses             int64
	Evictions                        int64
}

// RateLimiter is the contract internal/ratelimit satisfies.
type RateLimiter interface {
	Wait(ctx context.Context, source string) error
	Allow(source string) bool
}

// Runtime is the explicit context object threaded through connectors,
// analyzers, and the scoring engine. Nil fields are a programmer error;
// New does not check for them.
type Runtime struct {
	Cache   Cache
	Limiter RateLimiter
	Config  config.RunConfig
	Logger  zerolog.Logger
	Clock   Clock
}

// New builds a Runtime, defaulting Clock to SystemClock when omitted.
func New(cache Cache, limiter RateLimiter, cfg config.RunConfig, logger zerolog.Logger) *Runtime {
	return &Runtime{Cache: cache, Limiter: limiter, Config: cfg, Logger: logger, Clock: SystemClock{}}
}

// WithClock returns a copy of the Runtime using clk instead of the
// current Clock — the seam tests use to inject a fake clock.
func (r *Runtime) WithClock(clk Clock) *Runtime {
	cp := *r
	cp.Clock = clk
	return &cp
}

// Sub returns a logger scoped to a component name, matching the
// teacher's convention of attaching static fields at construction time
// rather than on every call site.
func (r *Runtime) Sub(component string) zerolog.Logger {
	return r.Logger.With().Str("component", component).Logger()
}
