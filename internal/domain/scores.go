package domain

import "time"

// ComponentID enumerates the component scores spec.md §3 names.
type ComponentID string

const (
	ComponentSupply        ComponentID = "supply"
	ComponentJobs          ComponentID = "jobs"
	ComponentUrban         ComponentID = "urban"
	ComponentOutdoor       ComponentID = "outdoor"
	ComponentElasticity    ComponentID = "elasticity"
	ComponentWildfire      ComponentID = "wildfire"
	ComponentFlood         ComponentID = "flood"
	ComponentSeismic       ComponentID = "seismic"
	ComponentHail          ComponentID = "hail"
	ComponentRadon         ComponentID = "radon"
	ComponentSnow          ComponentID = "snow"
	ComponentWater         ComponentID = "water"
	ComponentRegulatory    ComponentID = "regulatory"
	ComponentInsurance     ComponentID = "insurance"
	ComponentEnvironmental ComponentID = "environmental"
	ComponentAir           ComponentID = "air"
)

// clamp01to100 clamps a score into [0,100]. NewComponentScore replaces a
// NaN value with 0 before calling it, so the value it clamps is never NaN.
func clamp01to100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ComponentScore is a single analyzer's output (spec.md §3). Value is
// always clamped into [0,100]; NewComponentScore replaces a NaN value with 0.
type ComponentScore struct {
	Component  ComponentID            `json:"component"`
	Value      float64                `json:"value"`
	RawMetrics map[string]float64     `json:"raw_metrics,omitempty"`
	Missing    []string               `json:"missing,omitempty"`
	Confidence float64                `json:"confidence"`
	Reason     string                 `json:"reason,omitempty"`
}

// NewComponentScore builds a ComponentScore, clamping value and confidence
// into [0,100]. A NaN value is treated as 0 with a reason code appended,
// matching the "fully deprived of inputs" rule in spec.md §7.
func NewComponentScore(component ComponentID, value, confidence float64, raw map[string]float64, missing []string) ComponentScore {
	if value != value { // NaN check without importing math for one use
		value = 0
		confidence = 0
		missing = append(missing, "nan-value-forced-zero")
	}
	return ComponentScore{
		Component:  component,
		Value:      clamp01to100(value),
		RawMetrics: raw,
		Missing:    missing,
		Confidence: clamp01to100(confidence),
	}
}

// MarketMetrics bundles the four composite market components (spec.md §3).
type MarketMetrics struct {
	Supply     float64                    `json:"supply"`
	Jobs       float64                    `json:"jobs"`
	Urban      float64                    `json:"urban"`
	Outdoor    float64                    `json:"outdoor"`
	Elasticity float64                    `json:"elasticity"`
	Components map[ComponentID]ComponentScore `json:"components"`
}

// RiskAssessment bundles the risk components, the derived multiplier, and
// the exclusion determination (spec.md §3).
type RiskAssessment struct {
	Wildfire      float64                        `json:"wildfire"`
	Flood         float64                        `json:"flood"`
	Seismic       float64                        `json:"seismic"`
	Hail          float64                        `json:"hail"`
	Radon         float64                        `json:"radon"`
	Snow          float64                        `json:"snow"`
	Water         float64                        `json:"water"`
	Regulatory    float64                        `json:"regulatory"`
	Environmental float64                        `json:"environmental"`
	Air           float64                        `json:"air"`
	Components    map[ComponentID]ComponentScore `json:"components"`

	RiskMultiplier float64  `json:"risk_multiplier"`
	Excluded       bool     `json:"excluded"`
	ExclusionReasons []string `json:"exclusion_reasons,omitempty"`
}

// Quartile buckets percentile into Q1 (top) .. Q4 (bottom).
type Quartile string

const (
	Q1 Quartile = "Q1"
	Q2 Quartile = "Q2"
	Q3 Quartile = "Q3"
	Q4 Quartile = "Q4"
)

// QuartileFromPercentile maps percentile in [0,100] (100 = best) to a
// quartile label.
func QuartileFromPercentile(percentile float64) Quartile {
	switch {
	case percentile > 75:
		return Q1
	case percentile > 50:
		return Q2
	case percentile > 25:
		return Q3
	default:
		return Q4
	}
}

// RunStatus describes the outcome of scoring a single submarket within a
// batch (spec.md §7).
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusPartial RunStatus = "partial"
	StatusFailed  RunStatus = "failed"
)

// ScoredMarket is the per-submarket scoring result (spec.md §3/§6). It is
// handed out by value; once emitted it is never mutated.
type ScoredMarket struct {
	Submarket     Submarket      `json:"submarket"`
	Metrics       MarketMetrics  `json:"metrics"`
	Risk          RiskAssessment `json:"risk"`
	FinalScore    float64        `json:"final_score"`
	Rank          int            `json:"rank"`
	Percentile    float64        `json:"percentile"`
	Quartile      Quartile       `json:"quartile"`
	Confidence    float64        `json:"confidence"`
	ModelVersion  string         `json:"model_version"`
	Timestamp     time.Time      `json:"timestamp"`
	Status        RunStatus      `json:"status"`
	Reason        string         `json:"reason,omitempty"`
	Excluded      bool           `json:"excluded"`
}

// CanonicalRecord is the caller-facing serializable projection named in
// spec.md §6 (id, name, state, metrics map, risks map, ...).
type CanonicalRecord struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	State        State              `json:"state"`
	Metrics      map[string]float64 `json:"metrics"`
	Risks        map[string]float64 `json:"risks"`
	FinalScore   float64            `json:"final_score"`
	Rank         int                `json:"rank"`
	Percentile   float64            `json:"percentile"`
	Quartile     Quartile           `json:"quartile"`
	Confidence   float64            `json:"confidence"`
	ModelVersion string             `json:"model_version"`
	Timestamp    time.Time          `json:"timestamp"`
}

// Canonical projects a ScoredMarket into its canonical serializable form.
func (sm ScoredMarket) Canonical() CanonicalRecord {
	metrics := map[string]float64{
		"supply":     sm.Metrics.Supply,
		"jobs":       sm.Metrics.Jobs,
		"urban":      sm.Metrics.Urban,
		"outdoor":    sm.Metrics.Outdoor,
		"elasticity": sm.Metrics.Elasticity,
	}
	risks := map[string]float64{
		"wildfire":      sm.Risk.Wildfire,
		"flood":         sm.Risk.Flood,
		"seismic":       sm.Risk.Seismic,
		"hail":          sm.Risk.Hail,
		"radon":         sm.Risk.Radon,
		"snow":          sm.Risk.Snow,
		"water":         sm.Risk.Water,
		"regulatory":    sm.Risk.Regulatory,
		"environmental": sm.Risk.Environmental,
		"air":           sm.Risk.Air,
	}
	return CanonicalRecord{
		ID: sm.Submarket.ID, Name: sm.Submarket.Name, State: sm.Submarket.State,
		Metrics: metrics, Risks: risks,
		FinalScore: sm.FinalScore, Rank: sm.Rank, Percentile: sm.Percentile,
		Quartile: sm.Quartile, Confidence: sm.Confidence,
		ModelVersion: sm.ModelVersion, Timestamp: sm.Timestamp,
	}
}
