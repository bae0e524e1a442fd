// Package domain holds the value types shared across the screening core:
// submarkets, component scores, market/risk metrics, and scored results.
package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// State is one of the three markets this engine screens.
type State string

const (
	StateCO State = "CO"
	StateUT State = "UT"
	StateID State = "ID"
)

func (s State) Valid() bool {
	switch s {
	case StateCO, StateUT, StateID:
		return true
	}
	return false
}

// fipsStatePrefix maps a state to its standard 2-digit FIPS prefix.
var fipsStatePrefix = map[State]string{
	StateCO: "08",
	StateUT: "49",
	StateID: "16",
}

var kebabID = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Polygon is a single-ring WGS84 boundary. Rings are assumed closed
// (first point == last point) by convention; callers that omit the
// closing point are tolerated by Contains.
type Polygon struct {
	Ring []LatLng `json:"ring"`
}

// Contains reports whether pt lies inside the polygon using a standard
// ray-casting test. An empty polygon contains nothing.
func (p Polygon) Contains(pt LatLng) bool {
	if len(p.Ring) < 3 {
		return false
	}
	inside := false
	n := len(p.Ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := p.Ring[i], p.Ring[j]
		if (pi.Lng > pt.Lng) != (pj.Lng > pt.Lng) {
			slope := (pj.Lat - pi.Lat) / (pj.Lng - pi.Lng)
			atX := pi.Lat + slope*(pt.Lng-pi.Lng)
			if pt.Lat < atX {
				inside = !inside
			}
		}
	}
	return inside
}

// Submarket is the immutable, externally-provided geographic unit to be
// screened (spec.md §3). It is treated as read-only by the core.
type Submarket struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	State    State   `json:"state"`
	CBSA     string  `json:"cbsa,omitempty"`
	CountyFIPS string `json:"county_fips,omitempty"`
	Boundary *Polygon `json:"boundary,omitempty"`
	Centroid LatLng  `json:"centroid"`
}

// Validate checks the identity and geometry invariants from spec.md §3:
// kebab-case id, recognized state, centroid-in-boundary when present, and
// state/FIPS-prefix consistency when a county FIPS is supplied.
func (s Submarket) Validate() error {
	if !kebabID.MatchString(s.ID) {
		return fmt.Errorf("submarket id %q is not stable kebab-case", s.ID)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("submarket %s: name is required", s.ID)
	}
	if !s.State.Valid() {
		return fmt.Errorf("submarket %s: unrecognized state %q", s.ID, s.State)
	}
	if s.CountyFIPS != "" {
		if len(s.CountyFIPS) != 5 {
			return fmt.Errorf("submarket %s: county FIPS must be 5 digits, got %q", s.ID, s.CountyFIPS)
		}
		if prefix, ok := fipsStatePrefix[s.State]; ok && !strings.HasPrefix(s.CountyFIPS, prefix) {
			return fmt.Errorf("submarket %s: county FIPS %q inconsistent with state %s", s.ID, s.CountyFIPS, s.State)
		}
	}
	if s.Boundary != nil && len(s.Boundary.Ring) >= 3 {
		if !s.Boundary.Contains(s.Centroid) {
			return fmt.Errorf("submarket %s: centroid not inside boundary", s.ID)
		}
	}
	return nil
}

// ConnectorResponse is the normalized, source-tagged result of a
// Connector.fetch call (spec.md §3).
type ConnectorResponse struct {
	SourceID   string      `json:"source_id"`
	Payload    interface{} `json:"payload"`
	Vintage    time.Time   `json:"vintage"`
	Complete   bool        `json:"complete"`
	Warnings   []string    `json:"warnings,omitempty"`
}
