package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/lokit-s/A2A-protocol/internal/domain"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// CircuitBreakerClassifier wraps a Classifier with circuit breaker
// protection. When the wrapped provider fails repeatedly, the circuit opens
// and subsequent calls fail fast without reaching the provider.
type CircuitBreakerClassifier struct {
	inner   domain.Classifier
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

// NewCircuitBreakerClassifier wraps inner with a circuit breaker using the
// default trip settings.
func NewCircuitBreakerClassifier(inner domain.Classifier, logger *slog.Logger) *CircuitBreakerClassifier {
	name := inner.Name()
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "classifier:" + name,
		MaxRequests: 1, // one probe in half-open state
		Interval:    defaultCBInterval,
		Timeout:     defaultCBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= defaultCBMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &CircuitBreakerClassifier{inner: inner, breaker: cb, logger: logger}
}

// Classify implements domain.Classifier through the breaker.
func (c *CircuitBreakerClassifier) Classify(ctx context.Context, system, user string) (string, error) {
	reply, err := c.breaker.Execute(func() (string, error) {
		return c.inner.Classify(ctx, system, user)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", fmt.Errorf("classifier %q circuit open: %w", c.inner.Name(), domain.ErrClassifier)
		}
		return "", err
	}
	return reply, nil
}

// Name implements domain.Classifier.
func (c *CircuitBreakerClassifier) Name() string { return c.inner.Name() }
