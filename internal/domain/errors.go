package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrInconsistent marks a multi-step transition that failed partway through.
	// The operation must not be reported as succeeded; the caller re-fetches the
	// item and its claims and reconciles before retrying.
	ErrInconsistent = errors.New("inconsistent state")
)
