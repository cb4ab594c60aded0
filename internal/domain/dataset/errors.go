package dataset

import "errors"

// Sentinel kinds for engine errors. Callers match with errors.Is.
var (
	// ErrSchemaMissing means no date column could be resolved; the request
	// cannot proceed.
	ErrSchemaMissing = errors.New("schema missing: no date column resolved")

	// ErrInvalidSelection is returned in strict mode when a selection
	// references filter values the dataset does not carry.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrCancelled is returned when a deadline expires mid-aggregation.
	ErrCancelled = errors.New("request cancelled")
)
