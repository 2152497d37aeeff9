package reviewqueue

import "errors"

// Error taxonomy surfaced to callers. The API layer maps these onto
// status codes; nothing here is retried internally.
var (
	// ErrNotFound covers absent questions and review records, including
	// records owned by a different user.
	ErrNotFound = errors.New("reviewqueue: not found")
	// ErrInvalidState means the operation needs a pending record but the
	// record has already been reviewed or skipped.
	ErrInvalidState = errors.New("reviewqueue: review is no longer pending")
	// ErrValidation covers malformed input such as negative counts.
	ErrValidation = errors.New("reviewqueue: invalid input")
)
