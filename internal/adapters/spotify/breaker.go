package spotify

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ewilliams-labs/segue/internal/core/ports"
	"github.com/ewilliams-labs/segue/internal/logging"
	"github.com/ewilliams-labs/segue/internal/metrics"
)

// newBreaker opens after 60% of at least 10 calls in a minute fail, and
// probes again after 30 seconds.
func newBreaker(name string) *gobreaker.CircuitBreaker[struct{}] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("spotify adapter: circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

// callerAbort marks a failure caused by the caller's own context ending
// (request deadline or cancellation) rather than by the upstream.
type callerAbort struct {
	err error
}

func (e *callerAbort) Error() string { return e.err.Error() }

func (e *callerAbort) Unwrap() error { return e.err }

// breakerSuccess treats answers about the request itself (unknown id, bad
// token, caller gave up) as a healthy upstream.
func breakerSuccess(err error) bool {
	var abort *callerAbort
	return err == nil ||
		errors.As(err, &abort) ||
		errors.Is(err, ports.ErrNotFound) ||
		errors.Is(err, ports.ErrUnauthorized) ||
		errors.Is(err, context.Canceled)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
