package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paul-heyse/submarket-screen/internal/config"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return nil
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }
func (noopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (noopCache) Invalidate(ctx context.Context, key string) error { return nil }
func (noopCache) Stats() CacheStats                                { return CacheStats{} }

type noopLimiter struct{}

func (noopLimiter) Wait(ctx context.Context, source string) error { return nil }
func (noopLimiter) Allow(source string) bool                      { return true }

func TestNew_DefaultsToSystemClock(t *testing.T) {
	rt := New(noopCache{}, noopLimiter{}, config.Default(), zerolog.Nop())
	_, ok := rt.Clock.(SystemClock)
	assert.True(t, ok)
}

func TestWithClock_ReturnsIndependentCopy(t *testing.T) {
	rt := New(noopCache{}, noopLimiter{}, config.Default(), zerolog.Nop())
	fc := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	swapped := rt.WithClock(fc)

	_, stillSystem := rt.Clock.(SystemClock)
	assert.True(t, stillSystem, "original Runtime is untouched")
	assert.Equal(t, fc.now, swapped.Clock.Now())
}

func TestSystemClock_SleepRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SystemClock{}.Sleep(ctx, time.Hour)
	require.Error(t, err)
}

func TestSystemClock_SleepCompletesNormally(t *testing.T) {
	err := SystemClock{}.Sleep(context.Background(), time.Millisecond)
	require.NoError(t, err)
}

func TestSub_AttachesComponentField(t *testing.T) {
	rt := New(noopCache{}, noopLimiter{}, config.Default(), zerolog.Nop())
	logger := rt.Sub("connector:census-economic")
	assert.NotNil(t, logger)
}
