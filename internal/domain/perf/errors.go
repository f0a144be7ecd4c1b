package perf

import "errors"

// Sentinel kinds for the performance model.
var (
	// Input validation.
	ErrReadBeatmap         = errors.New("read beatmap failed")
	ErrMalformedBeatmap    = errors.New("malformed beatmap")
	ErrScopeExceedsObjects = errors.New("scope exceeds beatmap object count")

	// Computation.
	ErrConversion = errors.New("beatmap cannot be converted to mode")
	ErrNonFinite  = errors.New("calculation produced a non-finite value")
)

// IsValidation reports whether err is an input problem rather than a
// computation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrReadBeatmap) ||
		errors.Is(err, ErrMalformedBeatmap) ||
		errors.Is(err, ErrScopeExceedsObjects)
}
