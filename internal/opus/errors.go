package opus

import "errors"

// Errors.
var (
	// ErrNotOpus is returned by Scan when the magic signature does not
	// match; no further parsing is attempted.
	ErrNotOpus = errors.New("opus: bad magic")

	// ErrBlockNotFound is returned when a named block is requested but
	// absent from the directory. Recoverable; the caller decides fallback.
	ErrBlockNotFound = errors.New("opus: block not found")

	// ErrMissingParameter is returned when axis reconstruction needs a
	// header parameter that is absent or non-numeric. Fatal for that
	// extraction only.
	ErrMissingParameter = errors.New("opus: missing header parameter")
)
