package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paul-heyse/submarket-screen/internal/config"
	"github.com/paul-heyse/submarket-screen/internal/ratelimit"
	"github.com/paul-heyse/submarket-screen/internal/runtime"
)

type instantClock struct{}

func (instantClock) Now() time.Time                                   { return time.Now() }
func (instantClock) Sleep(ctx context.Context, d time.Duration) error { return nil }

func testRuntime() *runtime.Runtime {
	cfg := config.Default()
	rt := runtime.New(nil, ratelimit.New(nil), cfg, zerolog.Nop())
	return rt.WithClock(instantClock{})
}

func TestHTTPBase_Get_ReturnsBodyOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	b := NewHTTPBase(testRuntime(), "test-source")
	body, err := b.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
}

func TestHTTPBase_Get_RetriesOn500ThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	b := NewHTTPBase(testRuntime(), "flaky-source")
	body, err := b.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, 2, attempts)
}

func TestHTTPBase_Get_NonTransient404ReturnsImmediately(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b := NewHTTPBase(testRuntime(), "missing-source")
	_, err := b.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestHTTPBase_Get_RateLimitedStatusIsTransient(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	b := NewHTTPBase(testRuntime(), "throttled-source")
	body, err := b.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestCacheKey_MatchesDeclaredFormat(t *testing.T) {
	got := CacheKey("census-economic", "submarket", "state", "CO", "abc123")
	assert.Equal(t, "census-economic:submarket:state:CO:abc123", got)
}

func TestHashParams_ShortStringPassesThrough(t *testing.T) {
	assert.Equal(t, "short-param", HashParams("short-param"))
}

func TestHashParams_LongStringIsHashed(t *testing.T) {
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	got := HashParams(string(long))
	assert.Len(t, got, 32)
	assert.NotEqual(t, string(long), got)
}

func TestHashParams_DeterministicForSameInput(t *testing.T) {
	long := make([]byte, 250)
	for i := range long {
		long[i] = 'z'
	}
	assert.Equal(t, HashParams(string(long)), HashParams(string(long)))
}
