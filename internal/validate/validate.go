// Package validate implements the schema, range, outlier, and geometry
// checks spec.md §4.3 requires on every connector response before it
// reaches an analyzer. Grounded on the teacher's internal/data/validate
// package: field-range checking from schema.go, and a median-absolute-
// deviation outlier check adapted from anomaly.go's MAD z-score approach
// (simplified — no rolling window, since a submarket fetch is a single
// point read, not a tick stream).
package validate

import (
	"math"
	"sort"

	"github.com/paul-heyse/submarket-screen/internal/domain"
	"github.com/paul-heyse/submarket-screen/internal/errs"
)

// FieldSpec describes one expected field in a connector's parsed payload.
type FieldSpec struct {
	Name     string
	Required bool // missing => DataValidationError; absent-but-optional => warning
	Min, Max float64
	HasRange bool
}

// Schema is the set of fields one connector's payload must satisfy.
type Schema struct {
	Source string
	Fields []FieldSpec
}

// Validate checks values against the schema's required fields and
// declared ranges. Missing optional fields and out-of-range warnings are
// appended to warnings rather than failing the call, matching spec.md
// §4.3's "warnings annotated on the response without failing unless a
// critical field is missing". An out-of-range value is clamped to the
// field's bound in place (values is a map, a reference type, so the
// caller observes the clamp directly) per spec.md's "out-of-range =>
// warning + clamp" rule — the warning records that a clamp happened.
func (s Schema) Validate(values map[string]float64) (warnings []string, err error) {
	for _, f := range s.Fields {
		v, present := values[f.Name]
		if !present {
			if f.Required {
				return warnings, &errs.DataValidationError{Source: s.Source, Field: f.Name, Reason: "missing required field"}
			}
			warnings = append(warnings, "missing optional field: "+f.Name)
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return warnings, &errs.DataValidationError{Source: s.Source, Field: f.Name, Reason: "non-finite value"}
		}
		if f.HasRange && (v < f.Min || v > f.Max) {
			clamped := v
			if clamped < f.Min {
				clamped = f.Min
			}
			if clamped > f.Max {
				clamped = f.Max
			}
			values[f.Name] = clamped
			warnings = append(warnings, "out of expected range: "+f.Name)
		}
	}
	return warnings, nil
}

// MADOutlier reports whether value is an outlier within sample using the
// median absolute deviation z-score, the same statistic the teacher's
// AnomalyChecker uses for price/volume spikes. threshold defaults to 3.0
// in callers that don't have a domain-specific reason to deviate.
func MADOutlier(value float64, sample []float64, threshold float64) bool {
	if len(sample) < 5 {
		return false // too few points for a meaningful MAD
	}
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	med := median(sorted)
	deviations := make([]float64, len(sorted))
	for i, v := range sorted {
		deviations[i] = math.Abs(v - med)
	}
	sort.Float64s(deviations)
	mad := median(deviations)
	if mad == 0 {
		return false
	}
	z := 0.6745 * math.Abs(value-med) / mad
	return z > threshold
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Geometry validates a Submarket's boundary/centroid invariant, delegating
// to domain.Submarket.Validate (kebab-case id, state/FIPS consistency,
// centroid-in-boundary) and wrapping any failure as a DataValidationError
// so connectors that build Submarket records from raw geometry surface
// a uniform error type.
func Geometry(source string, sm domain.Submarket) error {
	if err := sm.Validate(); err != nil {
		return &errs.DataValidationError{Source: source, Field: "geometry", Reason: err.Error()}
	}
	return nil
}
