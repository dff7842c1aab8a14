package core

import "errors"

// Sentinel errors classify every failure the service reports. Callers wrap
// them with fmt.Errorf("%w: ...") and boundaries branch with errors.Is, so
// the message text never carries meaning.
var (
	// ErrValidation marks rejected input: bad amounts, malformed dates,
	// missing required fields.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransfer marks a transfer whose source and destination are
	// the same category.
	ErrInvalidTransfer = errors.New("invalid transfer")

	// ErrNotFound marks a row that does not exist for the requesting owner.
	// Absence and foreign ownership report identically.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks a request with no resolvable owner identity.
	ErrForbidden = errors.New("forbidden")

	// ErrStorage marks an unexpected database failure.
	ErrStorage = errors.New("storage error")
)
