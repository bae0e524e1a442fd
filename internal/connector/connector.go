// Package connector defines the capability-interface contract every
// external data source implements (spec.md §4.3, Design Notes §9): fetch,
// parse, validate, a declared cache TTL class, and a source id. Replaces
// "abstract base class with runtime inheritance" with a plain Go
// interface — each source is a concrete struct, not a subclass.
package connector

import (
	"context"
	"time"

	"github.com/paul-heyse/submarket-screen/internal/config"
	"github.com/paul-heyse/submarket-screen/internal/domain"
)

// Connector is the capability set spec.md §4.3/§9 names. Fetch returns
// the raw bytes for a submarket (from the network, subject to caching
// and rate limiting by the caller); Parse turns those bytes into the
// source's structured payload; Validate checks the parsed payload and
// returns the corrected payload — out-of-range fields clamped to their
// declared bounds, per spec.md §4.3's "out-of-range => warning + clamp".
type Connector interface {
	SourceID() string
	DeclaredTTL() config.TTLClass
	Fetch(ctx context.Context, sm domain.Submarket) ([]byte, error)
	Parse(raw []byte) (interface{}, error)
	Validate(parsed interface{}) (corrected interface{}, warnings []string, err error)
}

// Registry maps a source id to its Connector, the shape the scoring
// engine's task tree fans connector calls out over.
type Registry map[string]Connector

// Fetch runs Fetch+Parse+Validate end to end and wraps the result as a
// domain.ConnectorResponse, the shape spec.md §3 defines.
func Fetch(ctx context.Context, c Connector, sm domain.Submarket, now time.Time) (domain.ConnectorResponse, error) {
	raw, err := c.Fetch(ctx, sm)
	if err != nil {
		return domain.ConnectorResponse{}, err
	}
	parsed, err := c.Parse(raw)
	if err != nil {
		return domain.ConnectorResponse{}, err
	}
	corrected, warnings, err := c.Validate(parsed)
	if err != nil {
		return domain.ConnectorResponse{}, err
	}
	return domain.ConnectorResponse{
		SourceID: c.SourceID(), Payload: corrected, Vintage: now,
		Complete: true, Warnings: warnings,
	}, nil
}
