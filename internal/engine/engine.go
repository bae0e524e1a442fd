// Package engine is the per-submarket orchestration glue spec.md §2's data
// flow describes: "a Submarket is submitted -> Connectors pull needed
// datasets through Cache+RateLimiter -> Analyzers compute component
// scores -> ScoringEngine composes, applies risk multiplier and non-fit
// rules, assigns rank and confidence". It is core wiring, not the
// excluded CLI/report surface: the thin cmd/screenctl entry point calls
// ScoreSubmarket once per submarket through scoring.Batch.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paul-heyse/submarket-screen/internal/connector"
	"github.com/paul-heyse/submarket-screen/internal/domain"
	"github.com/paul-heyse/submarket-screen/internal/geo"
	"github.com/paul-heyse/submarket-screen/internal/market"
	"github.com/paul-heyse/submarket-screen/internal/risk"
	"github.com/paul-heyse/submarket-screen/internal/runtime"
	"github.com/paul-heyse/submarket-screen/internal/scoring"
	"github.com/paul-heyse/submarket-screen/internal/staterules"
)

// Source ids for the five representative connectors this engine wires
// (of the ~19 source kinds spec.md §4.3 names; see DESIGN.md).
const (
	SourceCensusEconomic = "census-economic"
	SourceBuildingPermit = "building-permits"
	SourcePOI            = "osm-poi"
	SourceWildfire       = "wildfire-hazard"
	SourceFlood          = "flood-overlay"
)

// fetchCached performs the cache-then-network fetch spec.md §4.3 mandates:
// a connector's Fetch is only invoked on a cache miss, and the result is
// written back with the connector's declared TTL.
func fetchCached(ctx context.Context, rt *runtime.Runtime, c connector.Connector, sm domain.Submarket) (domain.ConnectorResponse, error) {
	cacheKey := connector.CacheKey(c.SourceID(), "submarket", "state", string(sm.State), connector.HashParams(sm.ID))
	if raw, ok, err := rt.Cache.Get(ctx, cacheKey); err == nil && ok {
		var resp domain.ConnectorResponse
		if jsonErr := json.Unmarshal(raw, &resp); jsonErr == nil {
			return resp, nil
		}
	}
	resp, err := connector.Fetch(ctx, c, sm, rt.Clock.Now())
	if err != nil {
		return domain.ConnectorResponse{}, err
	}
	if raw, err := json.Marshal(resp); err == nil {
		_ = rt.Cache.Set(ctx, cacheKey, raw, c.DeclaredTTL().Default())
	}
	return resp, nil
}

// optional fetches a non-required source. A connector error or an absent
// registry entry degrades to "missing" rather than failing the submarket,
// per spec.md §4.5.
func optional(ctx context.Context, rt *runtime.Runtime, reg connector.Registry, sm domain.Submarket, source string) (domain.ConnectorResponse, bool) {
	c, ok := reg[source]
	if !ok {
		return domain.ConnectorResponse{}, false
	}
	resp, err := fetchCached(ctx, rt, c, sm)
	if err != nil {
		return domain.ConnectorResponse{}, false
	}
	return resp, true
}

// required fetches a source that backs the RiskAssessment's exclusion
// rule (building-permits, wildfire-hazard, flood-overlay); a non-transient
// connector failure here is surfaced rather than silently dropped.
func required(ctx context.Context, rt *runtime.Runtime, reg connector.Registry, sm domain.Submarket, source string) (domain.ConnectorResponse, error) {
	c, ok := reg[source]
	if !ok {
		return domain.ConnectorResponse{}, fmt.Errorf("required connector %q not registered", source)
	}
	return fetchCached(ctx, rt, c, sm)
}

// ScoreSubmarket runs the full per-submarket pipeline: connector fetches,
// market/geo/risk analyzers, the StateRules overlay, and the scoring
// engine's composite/risk-adjust/confidence steps. A missing optional data
// source degrades the affected ComponentScore rather than failing the
// submarket (spec.md §4.5); a non-transient failure on a required source
// (building-permits, wildfire-hazard, flood-overlay — all three back the
// exclusion rule) is returned as an error.
func ScoreSubmarket(ctx context.Context, rt *runtime.Runtime, reg connector.Registry, sm domain.Submarket) (domain.ScoredMarket, error) {
	components := map[domain.ComponentID]domain.ComponentScore{}
	var vintages []time.Time
	proxyMetricsUsed := 0

	econResp, econOK := optional(ctx, rt, reg, sm, SourceCensusEconomic)
	permitResp, err := required(ctx, rt, reg, sm, SourceBuildingPermit)
	if err != nil {
		return domain.ScoredMarket{}, err
	}
	poiResp, poiOK := optional(ctx, rt, reg, sm, SourcePOI)
	hazardResp, err := required(ctx, rt, reg, sm, SourceWildfire)
	if err != nil {
		return domain.ScoredMarket{}, err
	}
	floodResp, err := required(ctx, rt, reg, sm, SourceFlood)
	if err != nil {
		return domain.ScoredMarket{}, err
	}
	vintages = append(vintages, permitResp.Vintage, hazardResp.Vintage, floodResp.Vintage)
	if econOK {
		vintages = append(vintages, econResp.Vintage)
	}
	if poiOK {
		vintages = append(vintages, poiResp.Vintage)
	}

	permits, _ := permitResp.Payload.(connector.PermitPayload)
	hazard, _ := hazardResp.Payload.(connector.HazardPayload)
	flood, _ := floodResp.Payload.(connector.FloodPayload)

	// Supply
	supplyScore, supplyRaw := market.SupplyConstraint(permits.UnitsPermittedTrailing12Mo, permits.ExistingUnits)
	components[domain.ComponentSupply] = domain.NewComponentScore(domain.ComponentSupply, supplyScore, 90, supplyRaw, nil)

	// Jobs: the representative connector set fetches aggregate economic
	// indicators, not per-sector employment counts, so LQ/CAGR are
	// approximated from unemployment rate and population growth rather
	// than true sector LQs (a proxy metric, penalized in Confidence's
	// method term).
	var jobsScore float64
	var jobsRaw map[string]float64
	var jobsMissing []string
	if econOK {
		economic, _ := econResp.Payload.(connector.EconomicPayload)
		proxyLQ := 1.0 - economic.UnemploymentRate/20.0
		// PopulationGrowthRate is a percentage; JobsEmployment takes a fraction.
		jobsScore, jobsRaw = market.JobsEmployment([]float64{proxyLQ}, economic.PopulationGrowthRate/100)
		proxyMetricsUsed++
	} else {
		jobsMissing = []string{"census-economic"}
	}
	components[domain.ComponentJobs] = domain.NewComponentScore(domain.ComponentJobs, jobsScore, confidenceFor(jobsMissing), jobsRaw, jobsMissing)

	// Urban (POI density) and Outdoor (trailhead/park access) both derive
	// from the same osm-poi fetch, ring-sampled around the centroid.
	var urbanScore, outdoorScore float64
	var urbanRaw, outdoorRaw map[string]float64
	var urbanMissing, outdoorMissing []string
	if poiOK {
		poi, _ := poiResp.Payload.(connector.POIPayload)
		weighted := make([]geo.POIWeighted, 0, len(poi.Points))
		outdoorPoints := make([]domain.LatLng, 0)
		for _, pt := range poi.Points {
			weighted = append(weighted, geo.POIWeighted{Location: pt.Location, Weight: geo.CategoryWeight(pt.Category)})
			if pt.Category == "park" || pt.Category == "trailhead" {
				outdoorPoints = append(outdoorPoints, pt.Location)
			}
		}
		urbanScore, urbanRaw = geo.PoiDensity(sm.Centroid, weighted, 2)
		outdoorScore, outdoorRaw = geo.OutdoorAccess(sm.Centroid, outdoorPoints, 3)
	} else {
		urbanMissing = []string{"osm-poi"}
		outdoorMissing = []string{"osm-poi"}
	}
	components[domain.ComponentUrban] = domain.NewComponentScore(domain.ComponentUrban, urbanScore, confidenceFor(urbanMissing), urbanRaw, urbanMissing)
	components[domain.ComponentOutdoor] = domain.NewComponentScore(domain.ComponentOutdoor, outdoorScore, confidenceFor(outdoorMissing), outdoorRaw, outdoorMissing)

	populationGrowthRate := 0.0
	if econOK {
		economic, _ := econResp.Payload.(connector.EconomicPayload)
		populationGrowthRate = economic.PopulationGrowthRate
	}
	elasticity, elasticityRaw, elasticityMissing := market.Elasticity(0, 0, permits.UnitsPermittedTrailing12Mo, permits.ExistingUnits, populationGrowthRate, false)
	if !econOK {
		elasticityMissing = append(elasticityMissing, "census-economic")
	}
	proxyMetricsUsed++ // vacancy-rate input unavailable in this connector set; see market.Elasticity
	components[domain.ComponentElasticity] = domain.NewComponentScore(domain.ComponentElasticity, elasticity, confidenceFor(elasticityMissing), elasticityRaw, elasticityMissing)

	metrics := domain.MarketMetrics{
		Supply: supplyScore, Jobs: jobsScore, Urban: urbanScore, Outdoor: outdoorScore,
		Elasticity: elasticity, Components: components,
	}

	// Risk components. hazard/flood are required connectors (errors
	// surfaced above); seismic/hail/radon/snow/water/regulatory have no
	// connector in the representative set and are reported as a zero
	// baseline with the missing flag set, per spec.md §4.5's "emits the
	// computable sub-parts and flags the missing inputs; it does not
	// raise". StateRules (applied below) still augments these baselines.
	wildfireScore, wildfireRaw := risk.Wildfire(risk.WildfireInputs{
		HazardPotential:     hazard.BurnProbability * 100,
		FuelHighRiskPercent: hazard.FuelLoadIndex,
		HistoricalProximity: hazard.WUIExposureShare * 100,
		WUIClass:            hazard.WUIExposureShare * 100,
	})
	floodScore, floodRaw := risk.Flood(flood.FloodplainShare, flood.HighRiskZoneAE)
	seismic, hail, radon, snow := risk.HazardOverlay(risk.HazardOverlayInputs{})
	waterScore, waterRaw := risk.Water(0, 0)
	regulatoryScore, regulatoryRaw := risk.Regulatory(0, 0, 0)
	proxyMetricsUsed += 6 // seismic, hail, radon, snow, water, regulatory: zero-baseline proxies

	ra := risk.Assess(rt.Config, wildfireScore, floodScore, seismic, hail, radon, snow, waterScore, regulatoryScore, 0, 0,
		supplyScore, urbanScore, false, rt.Config.ExclusionOverrides[sm.ID])
	ra = staterules.Apply(sm.State, ra)
	ra.Components = map[domain.ComponentID]domain.ComponentScore{
		domain.ComponentWildfire:   domain.NewComponentScore(domain.ComponentWildfire, wildfireScore, 90, wildfireRaw, nil),
		domain.ComponentFlood:      domain.NewComponentScore(domain.ComponentFlood, floodScore, 90, floodRaw, nil),
		domain.ComponentSeismic:    domain.NewComponentScore(domain.ComponentSeismic, seismic, 0, nil, []string{"seismic-pga"}),
		domain.ComponentHail:       domain.NewComponentScore(domain.ComponentHail, hail, 0, nil, []string{"hail-climatology"}),
		domain.ComponentRadon:      domain.NewComponentScore(domain.ComponentRadon, radon, 0, nil, []string{"radon-zone"}),
		domain.ComponentSnow:       domain.NewComponentScore(domain.ComponentSnow, snow, 0, nil, []string{"snow-load"}),
		domain.ComponentWater:      domain.NewComponentScore(domain.ComponentWater, waterScore, 0, waterRaw, []string{"drought-status"}),
		domain.ComponentRegulatory: domain.NewComponentScore(domain.ComponentRegulatory, regulatoryScore, 0, regulatoryRaw, []string{"permit-timeline"}),
	}

	composite, confidencePenalty, partial := scoring.Composite(rt.Config.Weights, metrics)
	finalScore := scoring.RiskAdjusted(composite, ra.RiskMultiplier)

	vintage := oldestVintage(vintages, rt.Clock.Now())
	present := countPresent(jobsMissing, urbanMissing, outdoorMissing) + 1 // +1 for supply, always present
	confidence := scoring.Confidence(4, present, vintage, rt.Clock.Now(), proxyMetricsUsed, confidencePenalty)

	status := domain.StatusSuccess
	reason := ""
	if partial {
		status = domain.StatusPartial
		reason = "one or more optional data sources unavailable"
	}

	return domain.ScoredMarket{
		Submarket: sm, Metrics: metrics, Risk: ra,
		FinalScore: finalScore, Confidence: confidence,
		ModelVersion: rt.Config.ModelVersion, Timestamp: rt.Clock.Now(),
		Status: status, Reason: reason, Excluded: ra.Excluded,
	}, nil
}

func confidenceFor(missing []string) float64 {
	if len(missing) > 0 {
		return 0
	}
	return 90
}

func countPresent(missings ...[]string) int {
	present := 0
	for _, m := range missings {
		if len(m) == 0 {
			present++
		}
	}
	return present
}

func oldestVintage(vintages []time.Time, now time.Time) time.Time {
	if len(vintages) == 0 {
		return now
	}
	oldest := vintages[0]
	for _, v := range vintages[1:] {
		if v.Before(oldest) {
			oldest = v
		}
	}
	return oldest
}
