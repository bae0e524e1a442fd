// Package risk implements the RiskAnalyzers and the risk-multiplier/
// exclusion logic from spec.md §4.6: wildfire, flood, hazard overlay
// (seismic/hail/radon/snow), water stress, regulatory friction, and the
// affine composite-to-multiplier mapping with its exclusion rule.
package risk

import (
	"fmt"

	"github.com/paul-heyse/submarket-screen/internal/config"
	"github.com/paul-heyse/submarket-screen/internal/domain"
)

func clamp01to100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// WildfireInputs are the four weighted sub-factors spec.md §4.6 names.
type WildfireInputs struct {
	HazardPotential     float64 // 0-100, 30%
	FuelHighRiskPercent float64 // 0-100, 25%
	HistoricalProximity float64 // 0-100 (closer/more recent => higher), 20%
	WUIClass            float64 // 0-100, 25%
}

// Wildfire composes the four sub-factors with their stated weights.
func Wildfire(in WildfireInputs) (score float64, raw map[string]float64) {
	score = in.HazardPotential*0.30 + in.FuelHighRiskPercent*0.25 + in.HistoricalProximity*0.20 + in.WUIClass*0.25
	return clamp01to100(score), map[string]float64{
		"hazard_potential": in.HazardPotential, "fuel_high_risk_percent": in.FuelHighRiskPercent,
		"historical_proximity": in.HistoricalProximity, "wui_class": in.WUIClass,
	}
}

// Flood scores flood exposure from FEMA-style floodplain/high-risk-zone
// shares, scaled to [0,100].
func Flood(floodplainShare, highRiskZoneAEShare float64) (score float64, raw map[string]float64) {
	score = clamp01to100(floodplainShare*60 + highRiskZoneAEShare*40)
	return score, map[string]float64{"floodplain_share": floodplainShare, "high_risk_zone_ae_share": highRiskZoneAEShare}
}

// HazardOverlay blends seismic PGA, hail climatology, radon zone, and
// snow load into their four respective component scores — reported
// separately (spec.md §3's RiskAssessment keeps them distinct) rather
// than pre-combined, since the scoring engine and state overlays need to
// adjust them individually.
type HazardOverlayInputs struct {
	SeismicPGA float64 // normalized 0-100
	HailFreq   float64 // normalized 0-100
	RadonZone  float64 // normalized 0-100 (EPA zone 1/2/3 scaled)
	SnowLoad   float64 // normalized 0-100
}

func HazardOverlay(in HazardOverlayInputs) (seismic, hail, radon, snow float64) {
	return clamp01to100(in.SeismicPGA), clamp01to100(in.HailFreq), clamp01to100(in.RadonZone), clamp01to100(in.SnowLoad)
}

// Water scores water-rights/availability stress; higher means more
// constrained (riskier).
func Water(droughtSeverityIndex, waterRightsScarcity float64) (score float64, raw map[string]float64) {
	score = clamp01to100(droughtSeverityIndex*0.5 + waterRightsScarcity*0.5)
	return score, map[string]float64{"drought_severity_index": droughtSeverityIndex, "water_rights_scarcity": waterRightsScarcity}
}

// Regulatory scores permit timelines, zoning complexity, and tenant-
// policy risk (e.g. rent control exposure) into a single friction score.
func Regulatory(permitTimelineScore, zoningComplexity, tenantPolicyRisk float64) (score float64, raw map[string]float64) {
	score = clamp01to100(permitTimelineScore*0.4 + zoningComplexity*0.35 + tenantPolicyRisk*0.25)
	return score, map[string]float64{
		"permit_timeline_score": permitTimelineScore, "zoning_complexity": zoningComplexity, "tenant_policy_risk": tenantPolicyRisk,
	}
}

// riskMultiplierAnchors are the three fixed points spec.md §4.6 and the
// Open Questions section pin down: 0->1.10, 50->1.00, 100->0.90.
var riskMultiplierAnchors = [3]struct{ x, y float64 }{{0, 1.10}, {50, 1.00}, {100, 0.90}}

// Multiplier maps a composite risk score in [0,100] to a multiplier via
// the piecewise-linear affine function through the three anchors, then
// clamps to [0.85,1.10] — the range this spec adopts per its Open
// Questions resolution.
func Multiplier(compositeRiskScore float64) float64 {
	x := clamp01to100(compositeRiskScore)
	var m float64
	switch {
	case x <= 50:
		m = lerp(x, riskMultiplierAnchors[0].x, riskMultiplierAnchors[0].y, riskMultiplierAnchors[1].x, riskMultiplierAnchors[1].y)
	default:
		m = lerp(x, riskMultiplierAnchors[1].x, riskMultiplierAnchors[1].y, riskMultiplierAnchors[2].x, riskMultiplierAnchors[2].y)
	}
	if m < 0.85 {
		m = 0.85
	}
	if m > 1.10 {
		m = 1.10
	}
	return m
}

func lerp(x, x0, y0, x1, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// CompositeRiskScore blends the risk components with the fixed weights
// spec.md §4.6 names for the multiplier calculation (wildfire 25, flood
// 25, regulatory 30, insurance-proxy 20). Assess approximates
// insurance-proxy as the mean of the seismic, hail and water components,
// since no direct insurance-cost signal is available.
func CompositeRiskScore(weights config.RiskMultiplierWeights, wildfire, flood, regulatory, insuranceProxy float64) float64 {
	total := weights.Wildfire + weights.Flood + weights.Regulatory + weights.InsuranceProxy
	if total == 0 {
		return 0
	}
	return (wildfire*weights.Wildfire + flood*weights.Flood + regulatory*weights.Regulatory + insuranceProxy*weights.InsuranceProxy) / total
}

// Exclusion evaluates the non-fit rule from spec.md §4.6: wildfire>=90
// AND flood>=90, or a hard rent-control flag without override, or
// sustained commodity-sprawl (supply<40 AND urban<40).
func Exclusion(thresholds config.NonFitThresholds, wildfire, flood, supply, urban float64, hardRentControl, override bool) (excluded bool, reasons []string) {
	if wildfire >= thresholds.WildfireExclusion && flood >= thresholds.FloodExclusion {
		excluded = true
		reasons = append(reasons, fmt.Sprintf("wildfire+flood >= %.0f", thresholds.WildfireExclusion))
	}
	if hardRentControl && !override {
		excluded = true
		reasons = append(reasons, "hard rent-control flag without override")
	}
	if supply < thresholds.SupplyFloor && urban < thresholds.UrbanFloor {
		excluded = true
		reasons = append(reasons, fmt.Sprintf("supply < %.0f and urban < %.0f", thresholds.SupplyFloor, thresholds.UrbanFloor))
	}
	return excluded, reasons
}

// Assess builds a full domain.RiskAssessment from the individual
// component scores plus the derived multiplier and exclusion flag.
func Assess(cfg config.RunConfig, wildfire, flood, seismic, hail, radon, snow, water, regulatory, environmental, air float64, supply, urban float64, hardRentControl, override bool) domain.RiskAssessment {
	insuranceProxy := (seismic + hail + water) / 3
	composite := CompositeRiskScore(cfg.RiskWeights, wildfire, flood, regulatory, insuranceProxy)
	mult := Multiplier(composite)
	excluded, reasons := Exclusion(cfg.NonFit, wildfire, flood, supply, urban, hardRentControl, override)
	return domain.RiskAssessment{
		Wildfire: wildfire, Flood: flood, Seismic: seismic, Hail: hail, Radon: radon, Snow: snow,
		Water: water, Regulatory: regulatory, Environmental: environmental, Air: air,
		RiskMultiplier: mult, Excluded: excluded, ExclusionReasons: reasons,
	}
}
