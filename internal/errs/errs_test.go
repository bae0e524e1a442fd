package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsConfiguration(&ConfigurationError{Source: "x", Reason: "missing"}))
	assert.True(t, IsRateLimitExceeded(&RateLimitExceeded{Source: "x"}))
	assert.True(t, IsDataSource(&DataSourceError{Source: "x", StatusCode: 500}))
	assert.True(t, IsDataValidation(&DataValidationError{Source: "x", Field: "f"}))
	assert.True(t, IsNetwork(&NetworkError{Source: "x", Cause: fmt.Errorf("boom")}))
	assert.True(t, IsCancelled(&Cancelled{Stage: "fetch"}))

	assert.False(t, IsConfiguration(fmt.Errorf("plain")))
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := &NetworkError{Source: "census-economic", Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"network error", &NetworkError{Source: "x", Cause: fmt.Errorf("timeout")}, true},
		{"rate limit", &RateLimitExceeded{Source: "x"}, true},
		{"5xx data source", &DataSourceError{Source: "x", StatusCode: 503}, true},
		{"429 data source", &DataSourceError{Source: "x", StatusCode: 429}, true},
		{"404 data source", &DataSourceError{Source: "x", StatusCode: 404}, false},
		{"validation error", &DataValidationError{Source: "x", Field: "f"}, false},
		{"configuration error", &ConfigurationError{Source: "x"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Transient(tc.err))
		})
	}
}
