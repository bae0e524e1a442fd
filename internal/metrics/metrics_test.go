package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RecordsAcrossAllCollectors(t *testing.T) {
	reg := New()
	reg.RecordCacheHit("hot")
	reg.RecordCacheMiss("warm")
	reg.RecordCacheEviction()
	reg.SetCacheHitRatio(0.75)
	reg.RecordRateLimitWait("census-economic")
	reg.RecordRateLimitExceeded("census-economic")
	reg.ObserveConnectorLatency("census-economic", 120*time.Millisecond)
	reg.RecordConnectorError("census-economic", "network")
	reg.ObserveBatchDuration(2 * time.Second)
	reg.RecordSubmarketOutcome("success")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["submarket_screen_cache_hits_total"])
	assert.True(t, names["submarket_screen_batch_duration_seconds"])
}

func TestNew_IndependentRegistriesDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		a := New()
		b := New()
		a.RecordCacheHit("hot")
		b.RecordCacheHit("hot")
	})
}
