// Package redact centralizes credential scrubbing so no connector has to
// remember to do it inline — spec.md §4.3 requires that query-string auth
// parameters never reach a log sink or cache key.
package redact

import (
	"net/url"
	"strings"
)

// defaultParams lists query-string parameter names treated as secrets
// when no source-specific override is supplied.
var defaultParams = map[string]bool{
	"api_key": true, "apikey": true, "key": true, "token": true,
	"access_token": true, "secret": true, "password": true, "auth": true,
}

// Query returns rawURL with any matching query parameter values replaced
// by "REDACTED". Malformed URLs are returned unchanged (best-effort; the
// caller should not fail a log call over a redaction parse error).
func Query(rawURL string, extraParams ...string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	params := make(map[string]bool, len(defaultParams)+len(extraParams))
	for k, v := range defaultParams {
		params[k] = v
	}
	for _, p := range extraParams {
		params[strings.ToLower(p)] = true
	}
	changed := false
	for k := range q {
		if params[strings.ToLower(k)] {
			q.Set(k, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}
