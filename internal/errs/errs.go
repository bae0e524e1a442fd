// Package errs defines the error taxonomy from spec.md §7: typed kinds
// rather than exceptions, so callers can branch on what failed without
// parsing strings (Design Notes §9, "exceptions for control flow").
package errs

import (
	"errors"
	"fmt"
)

// ConfigurationError signals missing or invalid credentials/config. It is
// fatal to the component that needs it but not necessarily to the run.
type ConfigurationError struct {
	Source string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Source, e.Reason)
}

// RateLimitExceeded signals a source's window or daily quota was hit.
type RateLimitExceeded struct {
	Source    string
	RetryAfter string
}

func (e *RateLimitExceeded) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Source)
}

// DataSourceError signals a non-transient remote failure (4xx non-auth,
// or 5xx that survived the retry budget and is treated as permanent).
type DataSourceError struct {
	Source     string
	StatusCode int
	Reason     string
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source error from %s (status %d): %s", e.Source, e.StatusCode, e.Reason)
}

// DataValidationError signals a schema, critical-range, or geometry
// validation failure.
type DataValidationError struct {
	Source string
	Field  string
	Reason string
}

func (e *DataValidationError) Error() string {
	return fmt.Sprintf("validation error from %s field %s: %s", e.Source, e.Field, e.Reason)
}

// NetworkError signals a transport failure after the retry budget was
// exhausted.
type NetworkError struct {
	Source string
	Cause  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error from %s: %v", e.Source, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// Cancelled signals cooperative cancellation at a suspension point.
type Cancelled struct {
	Stage string
}

func (e *Cancelled) Error() string {
	return fmt.Sprintf("cancelled at %s", e.Stage)
}

func IsConfiguration(err error) bool {
	var t *ConfigurationError
	return errors.As(err, &t)
}

func IsRateLimitExceeded(err error) bool {
	var t *RateLimitExceeded
	return errors.As(err, &t)
}

func IsDataSource(err error) bool {
	var t *DataSourceError
	return errors.As(err, &t)
}

func IsDataValidation(err error) bool {
	var t *DataValidationError
	return errors.As(err, &t)
}

func IsNetwork(err error) bool {
	var t *NetworkError
	return errors.As(err, &t)
}

func IsCancelled(err error) bool {
	var t *Cancelled
	return errors.As(err, &t)
}

// Transient reports whether an error class should be retried (spec.md
// §4.3): timeouts, 5xx, 429 are transient; 400/401/403/404 are not.
func Transient(err error) bool {
	if IsNetwork(err) {
		return true
	}
	var rle *RateLimitExceeded
	if errors.As(err, &rle) {
		return true
	}
	var dse *DataSourceError
	if errors.As(err, &dse) {
		if dse.StatusCode == 429 || dse.StatusCode >= 500 {
			return true
		}
		return false
	}
	return false
}
