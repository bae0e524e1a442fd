package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paul-heyse/submarket-screen/internal/config"
	"github.com/paul-heyse/submarket-screen/internal/ratelimit"
)

// fileConfig is the on-disk YAML shape screenctl reads. It mirrors
// config.RunConfig's fields in plain, serializable form (durations as
// seconds, rate limits as a flat map) and is converted into a
// config.RunConfig after defaults are applied.
type fileConfig struct {
	Weights struct {
		Supply  float64 `yaml:"supply"`
		Jobs    float64 `yaml:"jobs"`
		Urban   float64 `yaml:"urban"`
		Outdoor float64 `yaml:"outdoor"`
	} `yaml:"weights"`
	Cache struct {
		WarmPath             string `yaml:"warm_path"`
		MemoryBudgetBytes    int64  `yaml:"memory_budget_bytes"`
		CompressionThreshold int    `yaml:"compression_threshold_bytes"`
	} `yaml:"cache"`
	Parallelism        int                           `yaml:"parallelism"`
	DefaultTimeoutSecs int                           `yaml:"default_timeout_seconds"`
	ModelVersion       string                        `yaml:"model_version"`
	LogLevel           string                        `yaml:"log_level"`
	ExclusionOverrides []string                      `yaml:"exclusion_overrides"`
	RateLimits         map[string]fileSourceLimits   `yaml:"rate_limits"`
	CensusAPIKey       string                        `yaml:"census_api_key"`
	SourceURLs         map[string]string              `yaml:"source_base_urls"`
}

type fileSourceLimits struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	DailyQuota        int64   `yaml:"daily_quota"`
}

// loadRunConfig reads a YAML file at path and overlays it onto
// config.Default(). An empty path returns the defaults unchanged — the
// core itself never requires a config file to exist (spec.md §6).
func loadRunConfig(path string) (config.RunConfig, fileConfig, error) {
	cfg := config.Default()
	var fc fileConfig
	if path == "" {
		return cfg, fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fc, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return cfg, fc, fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Weights.Supply+fc.Weights.Jobs+fc.Weights.Urban+fc.Weights.Outdoor > 0 {
		cfg.Weights = config.ScoringWeights{
			Supply: fc.Weights.Supply, Jobs: fc.Weights.Jobs,
			Urban: fc.Weights.Urban, Outdoor: fc.Weights.Outdoor,
		}
	}
	if fc.Cache.WarmPath != "" {
		cfg.Cache.Warm.Path = fc.Cache.WarmPath
	}
	if fc.Cache.MemoryBudgetBytes > 0 {
		cfg.Cache.Memory.SizeBytes = fc.Cache.MemoryBudgetBytes
	}
	if fc.Cache.CompressionThreshold > 0 {
		cfg.Cache.Compression.ThresholdBytes = fc.Cache.CompressionThreshold
	}
	if fc.Parallelism > 0 {
		cfg.Parallelism = fc.Parallelism
	}
	if fc.DefaultTimeoutSecs > 0 {
		cfg.DefaultTimeout = time.Duration(fc.DefaultTimeoutSecs) * time.Second
	}
	if fc.ModelVersion != "" {
		cfg.ModelVersion = fc.ModelVersion
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	for _, id := range fc.ExclusionOverrides {
		cfg.ExclusionOverrides[id] = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fc, err
	}
	return cfg, fc, nil
}

// buildLimiter turns the YAML rate-limit table into a ratelimit.Limiter.
// Sources absent from the table are unrestricted.
func buildLimiter(fc fileConfig) *ratelimit.Limiter {
	limits := make(map[string]ratelimit.SourceLimits, len(fc.RateLimits))
	for source, l := range fc.RateLimits {
		limits[source] = ratelimit.SourceLimits{
			RequestsPerSecond: l.RequestsPerSecond, Burst: l.Burst, DailyQuota: l.DailyQuota,
		}
	}
	return ratelimit.New(limits)
}
