package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_RedactsKnownSecretParams(t *testing.T) {
	got := Query("https://api.example.com/v1/data?api_key=supersecret&region=CO")
	assert.Contains(t, got, "region=CO")
	assert.Contains(t, got, "api_key=REDACTED")
	assert.NotContains(t, got, "supersecret")
}

func TestQuery_RedactsExtraParams(t *testing.T) {
	got := Query("https://api.example.com/v1/data?session=abc123", "session")
	assert.Contains(t, got, "session=REDACTED")
}

func TestQuery_NoSecretsLeavesURLUnchanged(t *testing.T) {
	u := "https://api.example.com/v1/data?region=UT&limit=10"
	assert.Equal(t, u, Query(u))
}

func TestQuery_MalformedURLReturnedUnchanged(t *testing.T) {
	bad := "://not a url"
	assert.Equal(t, bad, Query(bad))
}

func TestQuery_CaseInsensitiveParamNames(t *testing.T) {
	got := Query("https://api.example.com?API_KEY=topsecret")
	assert.NotContains(t, got, "topsecret")
}
