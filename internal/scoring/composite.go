package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/paul-heyse/submarket-screen/internal/config"
	"github.com/paul-heyse/submarket-screen/internal/domain"
)

// componentInput is one of the four weighted composite inputs along with
// its configured weight, used for redistribution when a component is
// missing.
type componentInput struct {
	name    string
	value   float64
	weight  float64
	present bool
}

// Composite computes the weighted composite score from supply/jobs/urban/
// outdoor, redistributing a missing component's weight proportionally
// across the present components and applying a confidence penalty (5-10
// points per missing component), per spec.md §4.7.
func Composite(weights config.ScoringWeights, m domain.MarketMetrics) (composite float64, confidencePenalty float64, partial bool) {
	inputs := []componentInput{
		{"supply", m.Supply, weights.Supply, !hasMissing(m, domain.ComponentSupply)},
		{"jobs", m.Jobs, weights.Jobs, !hasMissing(m, domain.ComponentJobs)},
		{"urban", m.Urban, weights.Urban, !hasMissing(m, domain.ComponentUrban)},
		{"outdoor", m.Outdoor, weights.Outdoor, !hasMissing(m, domain.ComponentOutdoor)},
	}
	presentWeight := 0.0
	for _, in := range inputs {
		if in.present {
			presentWeight += in.weight
		}
	}
	if presentWeight == 0 {
		return 0, 100, true
	}
	missingCount := 0
	for _, in := range inputs {
		w := in.weight
		if !in.present {
			missingCount++
			continue
		}
		redistributed := w / presentWeight // renormalize present weights to sum to 1
		composite += in.value * redistributed
	}
	partial = missingCount > 0
	confidencePenalty = float64(missingCount) * 7.5 // midpoint of the 5-10 point range
	return composite, confidencePenalty, partial
}

func hasMissing(m domain.MarketMetrics, id domain.ComponentID) bool {
	cs, ok := m.Components[id]
	if !ok {
		return true
	}
	return len(cs.Missing) > 0 && cs.Confidence == 0
}

// RiskAdjusted clamps composite*multiplier into [0,100], the final_score
// formula from spec.md §4.7.
func RiskAdjusted(composite, multiplier float64) float64 {
	final := composite * multiplier
	if final < 0 {
		return 0
	}
	if final > 100 {
		return 100
	}
	return final
}

// Confidence implements spec.md §4.7's formula:
// conf = 0.5*completeness + 0.3*freshness + 0.2*method, each in [0,100].
// completeness is percent of required inputs present scaled by 1.2 and
// capped at 100; freshness decays linearly from 100 at age 0 to 0 at 24
// months; method applies a fixed penalty per proxy metric used, then a
// flat confidencePenalty (from Composite's redistribution) is subtracted.
func Confidence(requiredInputs, presentInputs int, vintage, now time.Time, proxyMetricsUsed int, confidencePenalty float64) float64 {
	completeness := 0.0
	if requiredInputs > 0 {
		completeness = math.Min(100, 100*float64(presentInputs)/float64(requiredInputs)*1.2)
	}
	ageMonths := now.Sub(vintage).Hours() / (24 * 30)
	freshness := 100 - 100*ageMonths/24
	if freshness < 0 {
		freshness = 0
	}
	if freshness > 100 {
		freshness = 100
	}
	const methodPenaltyPerProxy = 8.0
	method := 100 - methodPenaltyPerProxy*float64(proxyMetricsUsed)
	if method < 0 {
		method = 0
	}
	conf := 0.5*completeness + 0.3*freshness + 0.2*method - confidencePenalty
	if conf < 0 {
		conf = 0
	}
	if conf > 100 {
		conf = 100
	}
	return conf
}

// ValidateWeights checks the sum-to-1±1e-9 invariant spec.md §8 states.
func ValidateWeights(w config.ScoringWeights) error {
	sum := w.Supply + w.Jobs + w.Urban + w.Outdoor
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("composite weights sum to %f, want 1±1e-9", sum)
	}
	return nil
}
