package connector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paul-heyse/submarket-screen/internal/errs"
	"github.com/paul-heyse/submarket-screen/internal/redact"
	"github.com/paul-heyse/submarket-screen/internal/retry"
	"github.com/paul-heyse/submarket-screen/internal/runtime"
)

// HTTPBase bundles the machinery every HTTP-backed connector needs:
// a timeout-bounded client, rate limiting, and circuit breaking. Grounded
// on the teacher's kraken.Client construction (http.Client with a capped
// idle-connection transport, a per-client rate limiter, a user agent).
type HTTPBase struct {
	Client    *http.Client
	RT        *runtime.Runtime
	Breaker   *retry.Breaker
	Source    string
	UserAgent string
}

// NewHTTPBase builds an HTTPBase with the teacher's transport tuning
// (10 idle conns, 30s idle timeout) and a per-source timeout pulled from
// rt.Config.DefaultTimeout.
func NewHTTPBase(rt *runtime.Runtime, source string) *HTTPBase {
	return &HTTPBase{
		Client: &http.Client{
			Timeout: rt.Config.DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		RT:        rt,
		Breaker:   retry.NewBreaker(source),
		Source:    source,
		UserAgent: "submarket-screen/1.0",
	}
}

// Get performs a rate-limited, circuit-broken, retried GET against url and
// returns the response body. Auth query parameters in url are redacted
// before any log line is emitted, per spec.md §4.3.
func (b *HTTPBase) Get(ctx context.Context, url string) ([]byte, error) {
	if err := b.RT.Limiter.Wait(ctx, b.Source); err != nil {
		return nil, err
	}
	var body []byte
	err := retry.Do(ctx, b.Breaker, b.RT.Clock, b.Source, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &errs.ConfigurationError{Source: b.Source, Reason: err.Error()}
		}
		req.Header.Set("User-Agent", b.UserAgent)
		resp, err := b.Client.Do(req)
		if err != nil {
			return &errs.NetworkError{Source: b.Source, Cause: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			return &errs.RateLimitExceeded{Source: b.Source, RetryAfter: resp.Header.Get("Retry-After")}
		}
		if resp.StatusCode >= 400 {
			return &errs.DataSourceError{Source: b.Source, StatusCode: resp.StatusCode, Reason: resp.Status}
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &errs.NetworkError{Source: b.Source, Cause: err}
		}
		body = data
		return nil
	})
	if err != nil {
		b.RT.Sub(b.Source).Warn().Str("url", redact.Query(url)).Err(err).Msg("fetch failed")
		return nil, err
	}
	b.RT.Sub(b.Source).Debug().Str("url", redact.Query(url)).Msg("fetch ok")
	return body, nil
}

// CacheKey builds the deterministic namespaced key spec.md §4.1 defines:
// source:subkind:geo_type:geo_id:params_hash.
func CacheKey(source, subkind, geoType, geoID, paramsHash string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", source, subkind, geoType, geoID, paramsHash)
}

// HashParams returns params unchanged when it's short enough to read in a
// cache key directly, and a truncated SHA-256 hex digest otherwise — the
// "SHA-256 truncated when raw param string exceeds 200 chars" rule from
// spec.md §4.1.
func HashParams(params string) string {
	if len(params) <= 200 {
		return params
	}
	sum := sha256.Sum256([]byte(params))
	return hex.EncodeToString(sum[:])[:32]
}
