package port

import "errors"

var (
	// ErrNotFound is returned when a referenced aggregate is absent or
	// soft-deleted
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable is returned when the backing store fails for
	// infrastructure reasons. Fatal to the current operation; not retried.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConflict is returned when a guarded write finds the row already
	// changed by a concurrent writer. Callers may retry from a fresh read.
	ErrConflict = errors.New("concurrent modification")
)
