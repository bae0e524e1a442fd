package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paul-heyse/submarket-screen/internal/config"
)

func TestWildfire_WeightedComposition(t *testing.T) {
	score, raw := Wildfire(WildfireInputs{
		HazardPotential: 80, FuelHighRiskPercent: 60, HistoricalProximity: 40, WUIClass: 50,
	})
	assert.InDelta(t, 80*0.30+60*0.25+40*0.20+50*0.25, score, 1e-9)
	assert.Equal(t, 80.0, raw["hazard_potential"])
}

func TestFlood_Composition(t *testing.T) {
	score, _ := Flood(0.5, 0.2)
	assert.InDelta(t, 0.5*60+0.2*40, score, 1e-9)
}

func TestHazardOverlay_ClampsEachComponentIndependently(t *testing.T) {
	seismic, hail, radon, snow := HazardOverlay(HazardOverlayInputs{
		SeismicPGA: 150, HailFreq: -10, RadonZone: 50, SnowLoad: 100,
	})
	assert.Equal(t, 100.0, seismic)
	assert.Equal(t, 0.0, hail)
	assert.Equal(t, 50.0, radon)
	assert.Equal(t, 100.0, snow)
}

func TestWater_Composition(t *testing.T) {
	score, _ := Water(40, 60)
	assert.InDelta(t, 50.0, score, 1e-9)
}

func TestRegulatory_Composition(t *testing.T) {
	score, _ := Regulatory(80, 60, 40)
	assert.InDelta(t, 80*0.4+60*0.35+40*0.25, score, 1e-9)
}

func TestMultiplier_AnchorsMatchSpec(t *testing.T) {
	assert.InDelta(t, 1.10, Multiplier(0), 1e-9)
	assert.InDelta(t, 1.00, Multiplier(50), 1e-9)
	assert.InDelta(t, 0.90, Multiplier(100), 1e-9)
}

func TestMultiplier_ClampsToConfiguredRange(t *testing.T) {
	assert.GreaterOrEqual(t, Multiplier(-50), 0.85)
	assert.LessOrEqual(t, Multiplier(200), 1.10)
}

func TestMultiplier_Monotonic(t *testing.T) {
	assert.Greater(t, Multiplier(10), Multiplier(90))
}

func TestCompositeRiskScore_WeightedBlend(t *testing.T) {
	w := config.DefaultRiskMultiplierWeights()
	score := CompositeRiskScore(w, 80, 60, 40, 20)
	total := w.Wildfire + w.Flood + w.Regulatory + w.InsuranceProxy
	want := (80*w.Wildfire + 60*w.Flood + 40*w.Regulatory + 20*w.InsuranceProxy) / total
	assert.InDelta(t, want, score, 1e-9)
}

func TestExclusion_WildfireAndFloodBothHigh(t *testing.T) {
	thresholds := config.DefaultNonFitThresholds()
	excluded, reasons := Exclusion(thresholds, 95, 92, 80, 80, false, false)
	assert.True(t, excluded)
	assert.NotEmpty(t, reasons)
}

func TestExclusion_WildfireAndFloodExactlyAtThreshold(t *testing.T) {
	thresholds := config.DefaultNonFitThresholds()
	excluded, reasons := Exclusion(thresholds, 90.000, 90.000, 80, 80, false, false)
	assert.True(t, excluded)
	assert.NotEmpty(t, reasons)
}

func TestExclusion_WildfireJustUnderThresholdDoesNotExclude(t *testing.T) {
	thresholds := config.DefaultNonFitThresholds()
	excluded, reasons := Exclusion(thresholds, 89.999, 90.000, 80, 80, false, false)
	assert.False(t, excluded)
	assert.Empty(t, reasons)
}

func TestExclusion_HardRentControlWithoutOverride(t *testing.T) {
	thresholds := config.DefaultNonFitThresholds()
	excluded, _ := Exclusion(thresholds, 10, 10, 80, 80, true, false)
	assert.True(t, excluded)
}

func TestExclusion_HardRentControlOverridden(t *testing.T) {
	thresholds := config.DefaultNonFitThresholds()
	excluded, _ := Exclusion(thresholds, 10, 10, 80, 80, true, true)
	assert.False(t, excluded)
}

func TestExclusion_SustainedCommoditySprawl(t *testing.T) {
	thresholds := config.DefaultNonFitThresholds()
	excluded, reasons := Exclusion(thresholds, 10, 10, 30, 30, false, false)
	assert.True(t, excluded)
	assert.NotEmpty(t, reasons)
}

func TestExclusion_NoTriggersPasses(t *testing.T) {
	thresholds := config.DefaultNonFitThresholds()
	excluded, reasons := Exclusion(thresholds, 10, 10, 80, 80, false, false)
	assert.False(t, excluded)
	assert.Empty(t, reasons)
}

func TestAssess_BuildsFullRiskAssessment(t *testing.T) {
	cfg := config.Default()
	ra := Assess(cfg, 20, 20, 30, 25, 15, 10, 35, 20, 0, 0, 80, 80, false, false)
	assert.Equal(t, 20.0, ra.Wildfire)
	assert.False(t, ra.Excluded)
	assert.GreaterOrEqual(t, ra.RiskMultiplier, 0.85)
	assert.LessOrEqual(t, ra.RiskMultiplier, 1.10)
}
