package catalog

import (
	"errors"
	"fmt"
)

// ErrNoSources is returned by DiscoverSources when the source directory
// cannot be listed.
var ErrNoSources = errors.New("source directory unavailable")

// ErrRowTooLong marks a row rejected because it has non-empty cells past the
// last header, when the reader is configured to reject such rows.
var ErrRowTooLong = errors.New("row has more cells than the header")

// ErrMissingDocumentStore is returned by Build when no store is configured
// for the catalog document.
var ErrMissingDocumentStore = errors.New("catalog document store is required")

// SourceError reports a source that could not be opened or decoded.
// The build skips the source and keeps going.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
