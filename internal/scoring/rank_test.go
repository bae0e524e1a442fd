package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paul-heyse/submarket-screen/internal/domain"
)

func market(id string, finalScore, supply, jobs, riskMultiplier float64) domain.ScoredMarket {
	return domain.ScoredMarket{
		Submarket:  domain.Submarket{ID: id},
		FinalScore: finalScore,
		Metrics:    domain.MarketMetrics{Supply: supply, Jobs: jobs},
		Risk:       domain.RiskAssessment{RiskMultiplier: riskMultiplier},
	}
}

func TestRank_OrdersByFinalScoreDescending(t *testing.T) {
	markets := []domain.ScoredMarket{
		market("low", 40, 50, 50, 1.0),
		market("high", 90, 50, 50, 1.0),
		market("mid", 60, 50, 50, 1.0),
	}
	ranked := Rank(markets)
	require.Len(t, ranked, 3)
	assert.Equal(t, "high", ranked[0].Submarket.ID)
	assert.Equal(t, "mid", ranked[1].Submarket.ID)
	assert.Equal(t, "low", ranked[2].Submarket.ID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestRank_TieBreaksBySupplyThenJobsThenRiskThenID(t *testing.T) {
	markets := []domain.ScoredMarket{
		market("z-lower-supply", 70, 40, 80, 1.0),
		market("a-higher-supply", 70, 60, 80, 1.0),
	}
	ranked := Rank(markets)
	assert.Equal(t, "a-higher-supply", ranked[0].Submarket.ID)

	markets2 := []domain.ScoredMarket{
		market("z", 70, 50, 50, 1.0),
		market("a", 70, 50, 50, 1.0),
	}
	ranked2 := Rank(markets2)
	assert.Equal(t, "a", ranked2[0].Submarket.ID, "id is the final deterministic tie-break")
}

func TestRank_LowerRiskMultiplierWinsTie(t *testing.T) {
	markets := []domain.ScoredMarket{
		market("risky", 70, 50, 50, 1.05),
		market("safe", 70, 50, 50, 0.95),
	}
	ranked := Rank(markets)
	assert.Equal(t, "safe", ranked[0].Submarket.ID)
}

func TestRank_PopulatesPercentileAndQuartile(t *testing.T) {
	markets := []domain.ScoredMarket{
		market("a", 90, 0, 0, 1.0),
		market("b", 70, 0, 0, 1.0),
		market("c", 50, 0, 0, 1.0),
		market("d", 10, 0, 0, 1.0),
	}
	ranked := Rank(markets)
	assert.Equal(t, domain.Q1, ranked[0].Quartile)
	assert.Equal(t, domain.Q4, ranked[3].Quartile)
}

func TestSensitivity_ReportsZeroDeltaWhenRankingIsStable(t *testing.T) {
	baseline := []domain.ScoredMarket{
		market("a", 90, 0, 0, 1.0),
		market("b", 10, 0, 0, 1.0),
	}
	baseline = Rank(baseline)
	weights := map[string]float64{"supply": 0.3, "jobs": 0.3, "urban": 0.2, "outdoor": 0.2}
	recompute := func(perturbed map[string]float64) []domain.ScoredMarket {
		return Rank([]domain.ScoredMarket{
			market("a", 90, 0, 0, 1.0),
			market("b", 10, 0, 0, 1.0),
		})
	}
	results := Sensitivity(baseline, []string{"supply", "jobs", "urban", "outdoor"}, weights, recompute)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 0, r.MaxRankDelta)
	}
}

func TestSensitivity_DetectsRankFlip(t *testing.T) {
	baseline := Rank([]domain.ScoredMarket{
		market("a", 90, 0, 0, 1.0),
		market("b", 10, 0, 0, 1.0),
	})
	weights := map[string]float64{"supply": 0.3, "jobs": 0.3, "urban": 0.2, "outdoor": 0.2}
	recompute := func(perturbed map[string]float64) []domain.ScoredMarket {
		// Flip the ranking regardless of the perturbation to exercise the
		// max-delta bookkeeping across multiple sweep points.
		return Rank([]domain.ScoredMarket{
			market("a", 10, 0, 0, 1.0),
			market("b", 90, 0, 0, 1.0),
		})
	}
	results := Sensitivity(baseline, []string{"supply"}, weights, recompute)
	for _, r := range results {
		assert.Equal(t, 1, r.MaxRankDelta)
	}
}
