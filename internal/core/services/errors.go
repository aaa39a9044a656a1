package services

import "errors"

// Request-level failures. Anything else that goes wrong inside a request is
// absorbed and reflected in the debug summary.
var (
	ErrInvalidInput    = errors.New("service: invalid input")
	ErrCredentials     = errors.New("service: catalog credentials unavailable")
	ErrSeedNotFound    = errors.New("service: seed track not found")
	ErrSeedUnavailable = errors.New("service: seed track lookup failed")
	ErrSearchFailed    = errors.New("service: catalog search failed")
)
