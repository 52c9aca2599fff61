package convert

import "errors"

var (
	// ErrRepositoryRequired is returned when Import has no repository.
	ErrRepositoryRequired = errors.New("plant repository required")

	// ErrSourceRequired is returned when Import has no source.
	ErrSourceRequired = errors.New("source required")
)
