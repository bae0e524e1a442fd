package domain

import "time"

// CacheStatsSnapshot is the side output named in spec.md §6.
type CacheStatsSnapshot struct {
	HotEntries   int64   `json:"hot_entries"`
	HotBytes     int64   `json:"hot_bytes"`
	HotHits      int64   `json:"hot_hits"`
	HotMisses    int64   `json:"hot_misses"`
	WarmHits     int64   `json:"warm_hits"`
	WarmMisses   int64   `json:"warm_misses"`
	ColdHits     int64   `json:"cold_hits"`
	ColdMisses   int64   `json:"cold_misses"`
	Evictions    int64   `json:"evictions"`
	HitRatio     float64 `json:"hit_ratio"`
}

// SubmarketTiming records per-submarket wall time for the audit trail.
type SubmarketTiming struct {
	SubmarketID string        `json:"submarket_id"`
	Duration    time.Duration `json:"duration"`
	Status      RunStatus     `json:"status"`
	Reason      string        `json:"reason,omitempty"`
}

// RunManifest is the immutable audit record emitted once per run
// (spec.md §3/§4.7). It is never mutated after the run finishes.
type RunManifest struct {
	RunID               string                       `json:"run_id"`
	ModelVersion         string                       `json:"model_version"`
	Weights              map[string]float64           `json:"weights"`
	RiskMultiplierWeights map[string]float64          `json:"risk_multiplier_weights"`
	RiskMultiplierAnchors map[string]float64          `json:"risk_multiplier_anchors"`
	NormalizationParams  map[string]NormalizationParam `json:"normalization_params,omitempty"`
	ConnectorVersions    map[string]string            `json:"connector_versions,omitempty"`
	Timings              []SubmarketTiming            `json:"timings"`
	CacheStats            CacheStatsSnapshot           `json:"cache_stats"`
	StartedAt             time.Time                    `json:"started_at"`
	FinishedAt            time.Time                    `json:"finished_at"`
	Cancelled             bool                         `json:"cancelled"`
	FatalError            string                       `json:"fatal_error,omitempty"`
	Attempted             int                          `json:"attempted"`
	Scored                int                          `json:"scored"`
}

// NormalizationParam records the min/max (or k/t for sigmoid) used for one
// metric's normalization, for reproducibility in the manifest.
type NormalizationParam struct {
	Metric string  `json:"metric"`
	Method string  `json:"method"`
	Min    float64 `json:"min,omitempty"`
	Max    float64 `json:"max,omitempty"`
	K      float64 `json:"k,omitempty"`
	T      float64 `json:"t,omitempty"`
}
