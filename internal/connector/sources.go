package connector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paul-heyse/submarket-screen/internal/config"
	"github.com/paul-heyse/submarket-screen/internal/domain"
	"github.com/paul-heyse/submarket-screen/internal/runtime"
	"github.com/paul-heyse/submarket-screen/internal/validate"
)

// CensusEconomicConnector fetches demographic/economic tabular data (one
// of the "19 source kinds" spec.md §4.3 names). Semi-static TTL: this
// data revises annually at most.
type CensusEconomicConnector struct {
	base *HTTPBase
	url  func(domain.Submarket) string
}

// NewCensusEconomicConnector requires an API key per spec.md §4.3's
// credential-at-construction rule.
func NewCensusEconomicConnector(rt *runtime.Runtime, urlFn func(domain.Submarket) string, apiKey string) (*CensusEconomicConnector, error) {
	if apiKey == "" {
		if _, err := config.Credentials("CENSUS_API_KEY", true); err != nil {
			return nil, err
		}
	}
	return &CensusEconomicConnector{base: NewHTTPBase(rt, "census-economic"), url: urlFn}, nil
}

func (c *CensusEconomicConnector) SourceID() string            { return "census-economic" }
func (c *CensusEconomicConnector) DeclaredTTL() config.TTLClass { return config.TTLSemiStatic }

func (c *CensusEconomicConnector) Fetch(ctx context.Context, sm domain.Submarket) ([]byte, error) {
	return c.base.Get(ctx, c.url(sm))
}

// EconomicPayload is the structured form the core works with; fields
// match the analyzer inputs named in spec.md §4.4.
type EconomicPayload struct {
	MedianHouseholdIncome float64 `json:"median_household_income"`
	PopulationGrowthRate  float64 `json:"population_growth_rate"`
	UnemploymentRate      float64 `json:"unemployment_rate"`
}

func (c *CensusEconomicConnector) Parse(raw []byte) (interface{}, error) {
	var p EconomicPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("census-economic parse: %w", err)
	}
	return p, nil
}

var economicSchema = validate.Schema{
	Source: "census-economic",
	Fields: []validate.FieldSpec{
		{Name: "median_household_income", Required: true, HasRange: true, Min: 0, Max: 1_000_000},
		{Name: "population_growth_rate", Required: false, HasRange: true, Min: -20, Max: 50},
		{Name: "unemployment_rate", Required: true, HasRange: true, Min: 0, Max: 100},
	},
}

func (c *CensusEconomicConnector) Validate(parsed interface{}) (interface{}, []string, error) {
	p := parsed.(EconomicPayload)
	values := map[string]float64{
		"median_household_income": p.MedianHouseholdIncome,
		"population_growth_rate":  p.PopulationGrowthRate,
		"unemployment_rate":       p.UnemploymentRate,
	}
	warnings, err := economicSchema.Validate(values)
	if err != nil {
		return nil, warnings, err
	}
	p.MedianHouseholdIncome = values["median_household_income"]
	p.PopulationGrowthRate = values["population_growth_rate"]
	p.UnemploymentRate = values["unemployment_rate"]
	return p, warnings, nil
}

// BuildingPermitConnector fetches building-permit counts feeding the
// supply-constraint analyzer. Dynamic TTL: permit filings update monthly.
type BuildingPermitConnector struct {
	base *HTTPBase
	url  func(domain.Submarket) string
}

func NewBuildingPermitConnector(rt *runtime.Runtime, urlFn func(domain.Submarket) string) *BuildingPermitConnector {
	return &BuildingPermitConnector{base: NewHTTPBase(rt, "building-permits"), url: urlFn}
}

func (c *BuildingPermitConnector) SourceID() string            { return "building-permits" }
func (c *BuildingPermitConnector) DeclaredTTL() config.TTLClass { return config.TTLDynamic }

func (c *BuildingPermitConnector) Fetch(ctx context.Context, sm domain.Submarket) ([]byte, error) {
	return c.base.Get(ctx, c.url(sm))
}

type PermitPayload struct {
	UnitsPermittedTrailing12Mo float64 `json:"units_permitted_trailing_12mo"`
	ExistingUnits              float64 `json:"existing_units"`
}

func (c *BuildingPermitConnector) Parse(raw []byte) (interface{}, error) {
	var p PermitPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("building-permits parse: %w", err)
	}
	return p, nil
}

var permitSchema = validate.Schema{
	Source: "building-permits",
	Fields: []validate.FieldSpec{
		{Name: "units_permitted_trailing_12mo", Required: true, HasRange: true, Min: 0, Max: 1_000_000},
		{Name: "existing_units", Required: true, HasRange: true, Min: 1, Max: 10_000_000},
	},
}

func (c *BuildingPermitConnector) Validate(parsed interface{}) (interface{}, []string, error) {
	p := parsed.(PermitPayload)
	values := map[string]float64{
		"units_permitted_trailing_12mo": p.UnitsPermittedTrailing12Mo,
		"existing_units":                p.ExistingUnits,
	}
	warnings, err := permitSchema.Validate(values)
	if err != nil {
		return nil, warnings, err
	}
	p.UnitsPermittedTrailing12Mo = values["units_permitted_trailing_12mo"]
	p.ExistingUnits = values["existing_units"]
	return p, warnings, nil
}

// POIConnector fetches OSM-like points of interest feeding the urban
// convenience and outdoor access geo analyzers. Static TTL: POI
// footprints change rarely.
type POIConnector struct {
	base *HTTPBase
	url  func(domain.Submarket) string
}

func NewPOIConnector(rt *runtime.Runtime, urlFn func(domain.Submarket) string) *POIConnector {
	return &POIConnector{base: NewHTTPBase(rt, "osm-poi"), url: urlFn}
}

func (c *POIConnector) SourceID() string            { return "osm-poi" }
func (c *POIConnector) DeclaredTTL() config.TTLClass { return config.TTLStatic }

func (c *POIConnector) Fetch(ctx context.Context, sm domain.Submarket) ([]byte, error) {
	return c.base.Get(ctx, c.url(sm))
}

type POIPayload struct {
	Points []POIPoint `json:"points"`
}

type POIPoint struct {
	Category string         `json:"category"`
	Location domain.LatLng  `json:"location"`
}

func (c *POIConnector) Parse(raw []byte) (interface{}, error) {
	var p POIPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("osm-poi parse: %w", err)
	}
	return p, nil
}

func (c *POIConnector) Validate(parsed interface{}) (interface{}, []string, error) {
	p := parsed.(POIPayload)
	var warnings []string
	for i, pt := range p.Points {
		if pt.Location.Lat < -90 || pt.Location.Lat > 90 || pt.Location.Lng < -180 || pt.Location.Lng > 180 {
			warnings = append(warnings, fmt.Sprintf("point %d has out-of-range coordinates", i))
		}
	}
	return p, warnings, nil
}

// WildfireHazardConnector fetches wildfire hazard/fuel raster summaries
// feeding the risk engine. Semi-static TTL: hazard models update a few
// times a year at most.
type WildfireHazardConnector struct {
	base *HTTPBase
	url  func(domain.Submarket) string
}

func NewWildfireHazardConnector(rt *runtime.Runtime, urlFn func(domain.Submarket) string) *WildfireHazardConnector {
	return &WildfireHazardConnector{base: NewHTTPBase(rt, "wildfire-hazard"), url: urlFn}
}

func (c *WildfireHazardConnector) SourceID() string            { return "wildfire-hazard" }
func (c *WildfireHazardConnector) DeclaredTTL() config.TTLClass { return config.TTLSemiStatic }

func (c *WildfireHazardConnector) Fetch(ctx context.Context, sm domain.Submarket) ([]byte, error) {
	return c.base.Get(ctx, c.url(sm))
}

type HazardPayload struct {
	BurnProbability   float64 `json:"burn_probability"`
	FuelLoadIndex     float64 `json:"fuel_load_index"`
	WUIExposureShare  float64 `json:"wui_exposure_share"`
}

func (c *WildfireHazardConnector) Parse(raw []byte) (interface{}, error) {
	var p HazardPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("wildfire-hazard parse: %w", err)
	}
	return p, nil
}

var wildfireSchema = validate.Schema{
	Source: "wildfire-hazard",
	Fields: []validate.FieldSpec{
		{Name: "burn_probability", Required: true, HasRange: true, Min: 0, Max: 1},
		{Name: "fuel_load_index", Required: false, HasRange: true, Min: 0, Max: 100},
		{Name: "wui_exposure_share", Required: false, HasRange: true, Min: 0, Max: 1},
	},
}

func (c *WildfireHazardConnector) Validate(parsed interface{}) (interface{}, []string, error) {
	p := parsed.(HazardPayload)
	values := map[string]float64{
		"burn_probability":   p.BurnProbability,
		"fuel_load_index":    p.FuelLoadIndex,
		"wui_exposure_share": p.WUIExposureShare,
	}
	warnings, err := wildfireSchema.Validate(values)
	if err != nil {
		return nil, warnings, err
	}
	p.BurnProbability = values["burn_probability"]
	p.FuelLoadIndex = values["fuel_load_index"]
	p.WUIExposureShare = values["wui_exposure_share"]
	return p, warnings, nil
}

// FloodOverlayConnector fetches flood polygon overlay coverage feeding
// the risk engine. Semi-static TTL: FEMA-style flood maps revise
// infrequently.
type FloodOverlayConnector struct {
	base *HTTPBase
	url  func(domain.Submarket) string
}

func NewFloodOverlayConnector(rt *runtime.Runtime, urlFn func(domain.Submarket) string) *FloodOverlayConnector {
	return &FloodOverlayConnector{base: NewHTTPBase(rt, "flood-overlay"), url: urlFn}
}

func (c *FloodOverlayConnector) SourceID() string            { return "flood-overlay" }
func (c *FloodOverlayConnector) DeclaredTTL() config.TTLClass { return config.TTLSemiStatic }

func (c *FloodOverlayConnector) Fetch(ctx context.Context, sm domain.Submarket) ([]byte, error) {
	return c.base.Get(ctx, c.url(sm))
}

type FloodPayload struct {
	FloodplainShare float64 `json:"floodplain_share"`
	HighRiskZoneAE  float64 `json:"high_risk_zone_ae_share"`
}

func (c *FloodOverlayConnector) Parse(raw []byte) (interface{}, error) {
	var p FloodPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("flood-overlay parse: %w", err)
	}
	return p, nil
}

var floodSchema = validate.Schema{
	Source: "flood-overlay",
	Fields: []validate.FieldSpec{
		{Name: "floodplain_share", Required: true, HasRange: true, Min: 0, Max: 1},
		{Name: "high_risk_zone_ae_share", Required: false, HasRange: true, Min: 0, Max: 1},
	},
}

func (c *FloodOverlayConnector) Validate(parsed interface{}) (interface{}, []string, error) {
	p := parsed.(FloodPayload)
	values := map[string]float64{
		"floodplain_share":        p.FloodplainShare,
		"high_risk_zone_ae_share": p.HighRiskZoneAE,
	}
	warnings, err := floodSchema.Validate(values)
	if err != nil {
		return nil, warnings, err
	}
	p.FloodplainShare = values["floodplain_share"]
	p.HighRiskZoneAE = values["high_risk_zone_ae_share"]
	return p, warnings, nil
}
