// internal/services/errors.go
package services

import (
	"errors"
)

// Error taxonomy surfaced verbatim to the transport layer. Handlers map these
// onto HTTP codes with errors.Is; services wrap them with context via
// fmt.Errorf("%w: ...").
var (
	// ErrValidation: malformed or missing input, caller can correct and retry.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated: credentials invalid, caller must re-authenticate.
	ErrUnauthenticated = errors.New("authentication failed")
	// ErrForbidden: caller lacks permission for the entity or operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound: referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStorage: asset persistence failed; the whole upload may be retried.
	ErrStorage = errors.New("storage failure")
)
