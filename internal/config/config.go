// Package config holds the structured configuration bag the core
// consumes (spec.md §6). The core never parses a config *file*; that is
// the CLI collaborator's job (Non-goals). This package only defines and
// defaults the recognized options and reads credentials from environment
// variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/paul-heyse/submarket-screen/internal/errs"
)

// TTLClass is one of the four cache TTL classes spec.md §4.3 defines.
type TTLClass string

const (
	TTLStatic     TTLClass = "static"      // ~365d
	TTLSemiStatic TTLClass = "semi_static" // ~30d
	TTLDynamic    TTLClass = "dynamic"     // ~7d
	TTLRealTime   TTLClass = "real_time"   // ~1h
)

// Default returns the default duration for a TTL class.
func (c TTLClass) Default() time.Duration {
	switch c {
	case TTLStatic:
		return 365 * 24 * time.Hour
	case TTLSemiStatic:
		return 30 * 24 * time.Hour
	case TTLDynamic:
		return 7 * 24 * time.Hour
	case TTLRealTime:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// MemoryCacheConfig configures the hot LRU tier.
type MemoryCacheConfig struct {
	SizeBytes int64
}

// WarmCacheConfig configures the file-backed SQLite warm tier.
type WarmCacheConfig struct {
	Path string
}

// DistributedCacheConfig configures the optional pluggable cold tier.
type DistributedCacheConfig struct {
	Enabled     bool
	Endpoint    string
	Credentials string
}

// CompressionConfig configures the deterministic payload compression.
type CompressionConfig struct {
	Enabled       bool
	ThresholdBytes int
	Level         int
}

// CacheConfig bundles all three tiers plus compression, per spec.md §6.
type CacheConfig struct {
	Memory      MemoryCacheConfig
	Warm        WarmCacheConfig
	Distributed DistributedCacheConfig
	Compression CompressionConfig
	TTLPolicies map[string]TTLClass // source id -> TTL class
}

// DefaultCacheConfig returns spec.md's stated defaults (256 MiB hot,
// 10 KiB compression threshold).
func DefaultCacheConfig(warmPath string) CacheConfig {
	return CacheConfig{
		Memory: MemoryCacheConfig{SizeBytes: 256 * 1024 * 1024},
		Warm:   WarmCacheConfig{Path: warmPath},
		Compression: CompressionConfig{
			Enabled: true, ThresholdBytes: 10 * 1024, Level: 6,
		},
		TTLPolicies: map[string]TTLClass{},
	}
}

// ScoringWeights holds the composite market weights from spec.md §4.7.
type ScoringWeights struct {
	Supply  float64
	Jobs    float64
	Urban   float64
	Outdoor float64
}

// DefaultScoringWeights returns the spec's stated defaults.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{Supply: 0.30, Jobs: 0.30, Urban: 0.20, Outdoor: 0.20}
}

func (w ScoringWeights) AsMap() map[string]float64 {
	return map[string]float64{"supply": w.Supply, "jobs": w.Jobs, "urban": w.Urban, "outdoor": w.Outdoor}
}

// RiskMultiplierWeights are the fixed weights from spec.md §4.6.
type RiskMultiplierWeights struct {
	Wildfire        float64
	Flood           float64
	Regulatory      float64
	InsuranceProxy  float64
}

func DefaultRiskMultiplierWeights() RiskMultiplierWeights {
	return RiskMultiplierWeights{Wildfire: 25, Flood: 25, Regulatory: 30, InsuranceProxy: 20}
}

// NonFitThresholds configures the exclusion rule from spec.md §4.6.
type NonFitThresholds struct {
	WildfireExclusion float64
	FloodExclusion    float64
	SupplyFloor       float64
	UrbanFloor        float64
	HardRentControlOverride bool
}

func DefaultNonFitThresholds() NonFitThresholds {
	return NonFitThresholds{WildfireExclusion: 90, FloodExclusion: 90, SupplyFloor: 40, UrbanFloor: 40}
}

// RunConfig is the top-level input named in spec.md §6. Every field has a
// default; the zero value is usable via Default().
type RunConfig struct {
	Weights            ScoringWeights
	RiskWeights        RiskMultiplierWeights
	NonFit             NonFitThresholds
	Cache              CacheConfig
	Parallelism        int
	DefaultTimeout     time.Duration
	PerSourceTTLOverride map[string]time.Duration
	ExclusionOverrides map[string]bool // submarket id -> force-include
	ModelVersion       string
	LogLevel           string
}

// Default returns a RunConfig with every field populated from spec.md's
// stated defaults.
func Default() RunConfig {
	return RunConfig{
		Weights:        DefaultScoringWeights(),
		RiskWeights:    DefaultRiskMultiplierWeights(),
		NonFit:         DefaultNonFitThresholds(),
		Cache:          DefaultCacheConfig("./data/warm-cache.db"),
		Parallelism:    6,
		DefaultTimeout: 20 * time.Second,
		PerSourceTTLOverride: map[string]time.Duration{},
		ExclusionOverrides:   map[string]bool{},
		ModelVersion:         "v1",
		LogLevel:             "info",
	}
}

// Credentials reads a named credential from the environment. Connectors
// call this at construction time and reject missing required credentials
// with a ConfigurationError (spec.md §4.3/§6) rather than crashing later.
func Credentials(envVar string, required bool) (string, error) {
	v, ok := os.LookupEnv(envVar)
	if !ok || v == "" {
		if required {
			return "", &errs.ConfigurationError{Source: envVar, Reason: "missing required credential"}
		}
		return "", nil
	}
	return v, nil
}

// Validate checks the RunConfig invariants spec.md §4.7/§8 call out:
// weights sum to 1±1e-9.
func (c RunConfig) Validate() error {
	sum := c.Weights.Supply + c.Weights.Jobs + c.Weights.Urban + c.Weights.Outdoor
	if sum < 1-1e-9 || sum > 1+1e-9 {
		return fmt.Errorf("composite weights sum to %f, want 1", sum)
	}
	return nil
}
