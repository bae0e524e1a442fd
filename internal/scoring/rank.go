package scoring

import (
	"sort"

	"github.com/paul-heyse/submarket-screen/internal/domain"
)

// Rank sorts markets descending by final_score with the explicit
// tie-break order spec.md §4.7 names: supply, jobs, (lower) risk
// multiplier, id lexicographic. It mutates and returns the slice with
// Rank, Percentile, and Quartile populated.
func Rank(markets []domain.ScoredMarket) []domain.ScoredMarket {
	sort.SliceStable(markets, func(i, j int) bool {
		a, b := markets[i], markets[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.Metrics.Supply != b.Metrics.Supply {
			return a.Metrics.Supply > b.Metrics.Supply
		}
		if a.Metrics.Jobs != b.Metrics.Jobs {
			return a.Metrics.Jobs > b.Metrics.Jobs
		}
		if a.Risk.RiskMultiplier != b.Risk.RiskMultiplier {
			return a.Risk.RiskMultiplier < b.Risk.RiskMultiplier
		}
		return a.Submarket.ID < b.Submarket.ID
	})
	n := len(markets)
	for i := range markets {
		rank := i + 1
		markets[i].Rank = rank
		percentile := 100 * float64(n-rank+1) / float64(n)
		markets[i].Percentile = percentile
		markets[i].Quartile = domain.QuartileFromPercentile(percentile)
	}
	return markets
}

// SensitivityResult reports the maximum rank delta observed for one
// submarket across the ±10%-per-weight sweep spec.md §4.7 requires.
type SensitivityResult struct {
	SubmarketID  string
	BaselineRank int
	MaxRankDelta int
}

// Sensitivity recomputes ranking after perturbing each weight ±10% (with
// the remaining weights renormalized to still sum to 1) and reports the
// maximum rank delta per submarket across all perturbations. recompute
// is a callback so the sweep can recompute final scores without
// re-running connectors/analyzers.
func Sensitivity(baseline []domain.ScoredMarket, weightNames []string, weightValues map[string]float64, recompute func(perturbed map[string]float64) []domain.ScoredMarket) []SensitivityResult {
	baselineRank := make(map[string]int, len(baseline))
	for _, m := range baseline {
		baselineRank[m.Submarket.ID] = m.Rank
	}
	maxDelta := make(map[string]int, len(baseline))
	for _, name := range weightNames {
		for _, pct := range []float64{1.10, 0.90} {
			perturbed := renormalize(weightValues, name, weightValues[name]*pct)
			swept := recompute(perturbed)
			for _, m := range swept {
				base, ok := baselineRank[m.Submarket.ID]
				if !ok {
					continue
				}
				delta := m.Rank - base
				if delta < 0 {
					delta = -delta
				}
				if delta > maxDelta[m.Submarket.ID] {
					maxDelta[m.Submarket.ID] = delta
				}
			}
		}
	}
	results := make([]SensitivityResult, 0, len(baseline))
	for _, m := range baseline {
		results = append(results, SensitivityResult{
			SubmarketID: m.Submarket.ID, BaselineRank: m.Rank, MaxRankDelta: maxDelta[m.Submarket.ID],
		})
	}
	return results
}

// renormalize sets weights[target] to newValue and rescales every other
// weight proportionally so the set still sums to 1.
func renormalize(weights map[string]float64, target string, newValue float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	remaining := 1 - newValue
	otherSum := 0.0
	for k, v := range weights {
		if k != target {
			otherSum += v
		}
	}
	for k, v := range weights {
		if k == target {
			out[k] = newValue
			continue
		}
		if otherSum == 0 {
			out[k] = 0
			continue
		}
		out[k] = v / otherSum * remaining
	}
	return out
}
