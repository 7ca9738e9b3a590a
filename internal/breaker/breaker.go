// Package breaker wraps remote service calls in a circuit breaker so that a
// dead translation or speech service fails fast instead of hanging every
// interaction. It never retries.
package breaker

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/logging"
)

const (
	// consecutive failures before the breaker opens
	tripAfter = 3
	// how long an open breaker rejects calls before probing again
	openTimeout = 30 * time.Second
)

// New creates a breaker named after the service it guards.
func New(name string, log *zap.Logger) *gobreaker.CircuitBreaker {
	log = logging.OrNop(log)

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Do runs fn through cb and returns its typed result.
func Do[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}
