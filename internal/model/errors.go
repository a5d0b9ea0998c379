package model

import "errors"

// Error kinds shared by the engine.
// Callers classify failures with errors.Is.
var (
	// ErrNotFound is returned when a collection or title is unknown.
	ErrNotFound = errors.New("not found")

	// ErrOutOfRange is returned when a requested page range is empty after clamping.
	ErrOutOfRange = errors.New("page range out of bounds")

	// ErrTransientFetch wraps fetch failures that exhausted the retry budget
	// or could not be retried.
	ErrTransientFetch = errors.New("fetch failed")

	// ErrPersistence wraps I/O errors while writing output files.
	ErrPersistence = errors.New("failed to write document")
)
