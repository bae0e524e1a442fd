// Package geo implements the GeoAnalyzers named in spec.md §4.5: outdoor
// access and urban-POI-density/isochrone-proxy scoring, bucketed over
// uber/h3-go hexagonal cells rather than raw lat/lng distance, grounded on
// the h3-spatial-cache reference (other_examples) which indexes point
// features into H3 cells for fast neighborhood aggregation.
package geo

import (
	"math"

	h3 "github.com/uber/h3-go/v4"

	"github.com/paul-heyse/submarket-screen/internal/domain"
)

// DefaultResolution is the H3 cell resolution used to bucket POIs around
// a submarket centroid — resolution 7 cells are roughly 5km^2, a good
// match for submarket-scale urban-convenience scoring.
const DefaultResolution = 7

// cellOf converts a LatLng into an H3 cell at res.
func cellOf(pt domain.LatLng, res int) h3.Cell {
	return h3.LatLngToCell(h3.LatLng{Lat: pt.Lat, Lng: pt.Lng}, res)
}

// PoiDensity scores urban convenience by counting POIs within k grid
// rings of the submarket centroid's H3 cell, weighted by category, and
// mapping the weighted count through an exponential saturation curve into
// [0,100]. This is the isochrone proxy spec.md §4.5 calls for: ring
// distance on the hex grid approximates travel-time buckets without a
// routing engine.
func PoiDensity(centroid domain.LatLng, points []POIWeighted, ringK int) (score float64, raw map[string]float64) {
	origin := cellOf(centroid, DefaultResolution)
	ring, err := h3.GridDisk(origin, ringK)
	if err != nil {
		return 0, map[string]float64{"error": 1}
	}
	inRing := make(map[h3.Cell]bool, len(ring))
	for _, c := range ring {
		inRing[c] = true
	}
	var weighted float64
	var count int
	for _, p := range points {
		if inRing[cellOf(p.Location, DefaultResolution)] {
			weighted += p.Weight
			count++
		}
	}
	// Exponential saturation (1 - e^(-w/25)): diminishing marginal value
	// of additional POIs.
	score = 100 * (1 - math.Exp(-weighted/25))
	if score > 100 {
		score = 100
	}
	return score, map[string]float64{"weighted_poi_count": weighted, "raw_poi_count": float64(count)}
}

// POIWeighted is one point of interest with a category-derived weight
// (e.g. grocery=3, park=2, transit_stop=2.5, restaurant=1).
type POIWeighted struct {
	Location domain.LatLng
	Weight   float64
}

// CategoryWeight maps a POI category name to its urban-convenience
// weight. Unknown categories default to a low baseline weight.
func CategoryWeight(category string) float64 {
	switch category {
	case "grocery", "supermarket":
		return 3.0
	case "transit_stop", "transit_station":
		return 2.5
	case "park", "trailhead":
		return 2.0
	case "school":
		return 1.5
	case "restaurant", "cafe":
		return 1.0
	default:
		return 0.5
	}
}

// OutdoorAccess scores proximity to public-land/trail access points using
// the same ring-distance proxy as PoiDensity, but over a narrower
// category set (trailheads, parks, public land boundary points) and a
// wider ring since outdoor amenities are expected to be sparser.
func OutdoorAccess(centroid domain.LatLng, trailheads []domain.LatLng, ringK int) (score float64, raw map[string]float64) {
	origin := cellOf(centroid, DefaultResolution)
	ring, err := h3.GridDisk(origin, ringK)
	if err != nil {
		return 0, map[string]float64{"error": 1}
	}
	inRing := make(map[h3.Cell]bool, len(ring))
	for _, c := range ring {
		inRing[c] = true
	}
	var count int
	for _, t := range trailheads {
		if inRing[cellOf(t, DefaultResolution)] {
			count++
		}
	}
	score = 100 * (1 - math.Exp(-float64(count)/5))
	if score > 100 {
		score = 100
	}
	return score, map[string]float64{"trailhead_count": float64(count)}
}
