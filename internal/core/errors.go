package core

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// status codes at the request boundary.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("access denied")
	ErrConflict   = errors.New("conflict")
)
