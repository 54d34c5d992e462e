package common

import "errors"

// Error taxonomy shared by the transport, the token store and the transfer
// service. Callers should match them with errors.Is.
var (
	// ErrUnauthorized covers invalid credentials and expired or missing tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation covers malformed input, whether caught locally before a
	// backend call or rejected by the backend.
	ErrValidation = errors.New("validation error")
	// ErrUnavailable means the backend call failed to complete.
	ErrUnavailable = errors.New("server unavailable")

	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	ErrServer    = errors.New("server error")
)
