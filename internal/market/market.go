// Package market implements the MarketAnalyzers named in spec.md §4.4:
// supply constraint, jobs/employment (location quotient + CAGR), and
// market elasticity; urban convenience is scored by internal/geo's
// PoiDensity. The mean of the sector LQ inputs uses gonum.org/v1/gonum,
// the numerical library the broader retrieval corpus depends on for
// exactly this kind of scalar statistics (no full example repo exercises
// it directly, so this package is gonum's only grounding in this module
// — recorded in DESIGN.md).
package market

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/paul-heyse/submarket-screen/internal/domain"
)

// SupplyConstraint scores housing supply tightness from trailing permit
// issuance relative to the existing unit stock: low permitting relative
// to stock implies a tighter, more supply-constrained market (higher
// score under the thesis this engine screens for).
func SupplyConstraint(unitsPermittedTrailing12mo, existingUnits float64) (score float64, raw map[string]float64) {
	if existingUnits <= 0 {
		return 0, map[string]float64{"missing": 1}
	}
	permitRate := unitsPermittedTrailing12mo / existingUnits // annualized new-supply rate
	// Sigmoid-style inversion: permitRate near 0 => score near 100 (tight
	// supply); permitRate >= ~3% => score trends toward 0 (abundant supply).
	score = 100 / (1 + math.Exp((permitRate-0.015)*300))
	return clamp(score), map[string]float64{"permit_rate": permitRate}
}

// LocationQuotient is the standard regional-economics ratio: a sector's
// local employment share divided by its national employment share. LQ>1
// means the submarket is more concentrated in that sector than the
// nation as a whole.
func LocationQuotient(localSectorEmployment, localTotalEmployment, nationalSectorEmployment, nationalTotalEmployment float64) float64 {
	if localTotalEmployment <= 0 || nationalTotalEmployment <= 0 || nationalSectorEmployment <= 0 {
		return math.NaN()
	}
	localShare := localSectorEmployment / localTotalEmployment
	nationalShare := nationalSectorEmployment / nationalTotalEmployment
	if nationalShare == 0 {
		return math.NaN()
	}
	return localShare / nationalShare
}

// CAGR computes the compound annual growth rate between two employment
// readings years apart.
func CAGR(begin, end, years float64) float64 {
	if begin <= 0 || years <= 0 {
		return math.NaN()
	}
	return math.Pow(end/begin, 1/years) - 1
}

// JobsEmployment combines an innovation-sector location quotient with its
// growth rate into a single [0,100] score. lqs is one LQ per tracked
// innovation sector (tech, healthcare, advanced manufacturing, etc.);
// stat.Mean gives the blended LQ across sectors actually observed.
func JobsEmployment(lqs []float64, cagr float64) (score float64, raw map[string]float64) {
	valid := make([]float64, 0, len(lqs))
	for _, v := range lqs {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return 0, map[string]float64{"missing": 1}
	}
	weights := make([]float64, len(valid))
	for i := range weights {
		weights[i] = 1
	}
	meanLQ := stat.Mean(valid, weights)
	// Blend: LQ contributes a baseline (LQ=1 => 50pts, LQ=2 => ~67pts,
	// saturating), CAGR contributes a scaled bonus/penalty.
	lqScore := 100 * meanLQ / (meanLQ + 1)
	cagrBonus := 0.0
	if !math.IsNaN(cagr) {
		cagrBonus = clamp(50+cagr*500) - 50 // +-50 at +-10% growth, before blending
	}
	score = clamp(lqScore*0.7 + (50+cagrBonus)*0.3)
	return score, map[string]float64{"mean_location_quotient": meanLQ, "employment_cagr": cagr}
}

// Elasticity scores spec.md §4.4's named market-elasticity formula:
// vacancy-rate deviation from a benchmark, blended with an absorption
// proxy (permits issued vs. population growth). No vacancy-rate
// connector is wired in this engine's representative connector set (see
// DESIGN.md's connector scope decision), so vacancyRate/benchmarkVacancy
// are accepted as optional inputs: callers without a vacancy source pass
// vacancyKnown=false (the vacancy inputs are then ignored and the
// deviation is zero) and the returned missing list carries
// "vacancy-rate" so Confidence penalizes the gap instead of the score
// silently absorbing it. The absorption term is always fully computed
// from real connector data (permits, existing units, population growth).
func Elasticity(vacancyRate, benchmarkVacancyRate, permitsTrailing12mo, existingUnits, populationGrowthRate float64, vacancyKnown bool) (score float64, raw map[string]float64, missing []string) {
	if existingUnits <= 0 {
		return 0, map[string]float64{"missing": 1}, []string{"vacancy-rate", "absorption-proxy"}
	}
	supplyGrowthRate := permitsTrailing12mo / existingUnits
	absorption := supplyGrowthRate - populationGrowthRate/100
	vacancyDeviation := 0.0
	if vacancyKnown {
		vacancyDeviation = vacancyRate - benchmarkVacancyRate
	} else {
		missing = append(missing, "vacancy-rate")
	}
	// Positive absorption (supply outpacing population growth) or positive
	// vacancy deviation (slack above benchmark) both indicate elastic
	// supply; invert and center at 50 so "higher score = more
	// constrained/attractive", the same convention every other component
	// in this engine uses.
	elasticitySignal := vacancyDeviation*2 + absorption*500
	score = clamp(50 - elasticitySignal)
	raw = map[string]float64{
		"supply_growth_rate":     supplyGrowthRate,
		"population_growth_rate": populationGrowthRate,
		"absorption_proxy":       absorption,
		"vacancy_rate":           vacancyRate,
		"benchmark_vacancy_rate": benchmarkVacancyRate,
		"vacancy_deviation":      vacancyDeviation,
	}
	return score, raw, missing
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ToComponentScore is a small adapter so analyzers can build a
// domain.ComponentScore without importing domain in every analyzer call
// site that already imports it transitively.
func ToComponentScore(id domain.ComponentID, value, confidence float64, raw map[string]float64, missing []string) domain.ComponentScore {
	return domain.NewComponentScore(id, value, confidence, raw, missing)
}
