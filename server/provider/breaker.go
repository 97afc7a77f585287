package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
	"github.com/teilomillet/chatintel/config"
	"github.com/teilomillet/chatintel/server/metrics"
	"go.uber.org/zap"
)

// BreakerCompleter guards a Completer with a circuit breaker. After
// FailureThreshold consecutive failures calls fail fast with
// ErrProviderUnavailable until the breaker's timeout elapses.
type BreakerCompleter struct {
	next   Completer
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreakerCompleter wraps next. m may be nil.
func NewBreakerCompleter(next Completer, name string, cfg config.CircuitBreakerConfig, logger *zap.Logger, m *metrics.Metrics) *BreakerCompleter {
	b := &BreakerCompleter{
		next:   next,
		logger: logger,
	}

	threshold := cfg.FailureThreshold
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if m != nil {
				m.BreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
		// A caller hanging up says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	b.cb = gobreaker.NewCircuitBreaker(settings)

	if m != nil {
		m.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	}

	return b
}

// Complete runs the wrapped call through the breaker.
func (b *BreakerCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return "", err
	}
	return v.(string), nil
}

// State reports the breaker state.
func (b *BreakerCompleter) State() gobreaker.State {
	return b.cb.State()
}
