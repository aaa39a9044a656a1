package spotify

import (
	"errors"
	"net/http"

	"github.com/ewilliams-labs/segue/internal/core/ports"
)

// statusError maps a non-200 response to a typed catalog failure.
func statusError(op string, status int) error {
	var kind error
	switch {
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		kind = ports.ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = ports.ErrUnauthorized
	case status == http.StatusTooManyRequests:
		kind = ports.ErrRateLimited
	default:
		kind = ports.ErrUnavailable
	}
	return &ports.CatalogError{Op: op, Status: status, Kind: kind}
}

// outcome is the metrics label for a call result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	case errors.Is(err, ports.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ports.ErrRateLimited):
		return "rate_limited"
	default:
		return "unavailable"
	}
}
