// Package staterules implements the StateRules overlay from spec.md §4.8:
// a small set of pure, deterministic per-state functions that augment —
// never replace — the general RiskAnalyzer and MarketAnalyzer outputs.
// Grounded on the teacher's internal/config/regime package, which drives
// regime-specific weight adjustments from a fixed lookup table; here the
// lookup key is domain.State rather than a detected market regime, and
// the table holds additive/multiplicative nudges instead of replacement
// weights.
package staterules

import "github.com/paul-heyse/submarket-screen/internal/domain"

// waterAvailability holds the per-state baseline water-rights scarcity
// adjustment spec.md §4.8 calls out ("per-state water-rights
// availability"). Colorado's prior-appropriation doctrine and Utah's
// closed groundwater basins score more scarce than Idaho's generally
// more available surface rights.
var waterAvailability = map[domain.State]float64{
	domain.StateCO: 8.0,
	domain.StateUT: 12.0,
	domain.StateID: -5.0,
}

// Apply adjusts a copy of a RiskAssessment for state-specific overlays and
// returns it; every adjustment is a multiplicative and/or additive nudge
// on the general analyzer's output, clamped to [0,100], never a
// replacement of it.
func Apply(state domain.State, ra domain.RiskAssessment) domain.RiskAssessment {
	switch state {
	case domain.StateCO:
		ra.Hail = ColoradoFrontRangeHailPremium(ra.Hail)
	case domain.StateUT:
		ra.Seismic = UtahWasatchSeismicEmphasis(ra.Seismic)
	case domain.StateID:
		ra.Wildfire = IdahoForestInterfaceWildfireEmphasis(ra.Wildfire)
	}
	ra.Water = WaterRightsAvailability(state, ra.Water)
	return ra
}

// ColoradoFrontRangeHailPremium scales up the hail component for
// Colorado's Front Range corridor, which sees the country's highest
// hail-loss frequency (Denver-Boulder-Colorado Springs). Applied as a
// bounded multiplicative premium, clamped to [0,100] so the overlay can
// only redistribute within the existing scale, never exceed it.
func ColoradoFrontRangeHailPremium(hail float64) float64 {
	return clamp(hail * 1.15)
}

// UtahWasatchSeismicEmphasis increases the weight the seismic component
// carries for submarkets along the Wasatch Front, where the Wasatch Fault
// system drives materially higher ground-shaking hazard than the rest of
// the state's base USGS PGA figures alone would suggest.
func UtahWasatchSeismicEmphasis(seismic float64) float64 {
	return clamp(seismic*1.10 + 3.0)
}

// IdahoForestInterfaceWildfireEmphasis raises the wildfire component for
// Idaho's extensive forest/wildland-urban-interface footprint, which the
// general analyzer's hazard-potential input alone underweights relative
// to Idaho's historical fire-season severity.
func IdahoForestInterfaceWildfireEmphasis(wildfire float64) float64 {
	return clamp(wildfire*1.08 + 4.0)
}

// WaterRightsAvailability adds the state's baseline water-rights scarcity
// adjustment to the general Water score. States not present in the table
// (none, given domain.State is closed to CO/UT/ID) pass through unchanged.
func WaterRightsAvailability(state domain.State, water float64) float64 {
	adj, ok := waterAvailability[state]
	if !ok {
		return clamp(water)
	}
	return clamp(water + adj)
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
