package corpus

import "errors"

var (
	// ErrSourceRequired is returned when a loader is created without a source.
	ErrSourceRequired = errors.New("source required")

	// ErrFetchPanicked wraps a panic raised while fetching a partition.
	ErrFetchPanicked = errors.New("partition fetch panicked")
)
