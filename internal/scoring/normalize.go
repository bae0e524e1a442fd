// Package scoring implements the ScoringEngine named in spec.md §4.7:
// normalization, weighted composition with redistribution, risk
// adjustment, ranking with deterministic tie-break, confidence, a
// sensitivity sweep, and the audit manifest. Grounded on the teacher's
// internal/score/composite package (weight validation, bounded
// normalization, regime-style weight tables), generalized from crypto
// factor scoring to submarket component scoring.
package scoring

import "math"

// Linear normalizes v into [0,100] given an observed [min,max] range.
// Equal min and max returns 50 (spec.md §8's degenerate-range invariant).
func Linear(v, min, max float64) float64 {
	if min == max {
		return 50
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return 100 * (v - min) / (max - min)
}

// Percentile normalizes v by its rank within sample (the share of sample
// values <= v, times 100), suited to metrics with no natural bound.
func Percentile(v float64, sample []float64) float64 {
	if len(sample) == 0 {
		return 50
	}
	below := 0
	for _, s := range sample {
		if s <= v {
			below++
		}
	}
	return 100 * float64(below) / float64(len(sample))
}

// Logarithmic applies Linear after transforming v, min, max through ln;
// only valid for strictly-positive metrics, per spec.md §4.7.
func Logarithmic(v, min, max float64) float64 {
	if v <= 0 || min <= 0 || max <= 0 {
		return 50
	}
	return Linear(math.Log(v), math.Log(min), math.Log(max))
}

// ThresholdSigmoid maps v through a logistic curve centered at t with
// steepness k, scaled to [0,100] — for metrics with a meaningful
// threshold rather than a bounded range. internal/market's permit-rate
// supply score computes its own logistic curve and does not call this.
func ThresholdSigmoid(v, t, k float64) float64 {
	return 100 / (1 + math.Exp(-k*(v-t)))
}
