package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paul-heyse/submarket-screen/internal/domain"
)

// loadSubmarkets reads the JSON submarket list spec.md §3/§6 names as the
// core's input and validates each entry. A single invalid submarket
// fails the whole load: a malformed input file is a configuration
// mistake, not a per-submarket runtime condition.
func loadSubmarkets(path string) ([]domain.Submarket, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read submarkets %s: %w", path, err)
	}
	var submarkets []domain.Submarket
	if err := json.Unmarshal(raw, &submarkets); err != nil {
		return nil, fmt.Errorf("parse submarkets %s: %w", path, err)
	}
	for _, sm := range submarkets {
		if err := sm.Validate(); err != nil {
			return nil, err
		}
	}
	return submarkets, nil
}
