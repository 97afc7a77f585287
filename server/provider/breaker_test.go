package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teilomillet/chatintel/config"
	"github.com/teilomillet/chatintel/server/metrics"
	"github.com/teilomillet/chatintel/server/mocks"
	"go.uber.org/zap/zaptest"
)

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 3,
	}
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	next := &mocks.Completer{Reply: "ok"}
	b := NewBreakerCompleter(next, "openai", breakerConfig(), zaptest.NewLogger(t), nil)

	text, err := b.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	upstream := errors.New("boom")
	next := &mocks.Completer{Respond: func(ctx context.Context, prompt string) (string, error) {
		return "", upstream
	}}
	m := metrics.NewMetrics()
	b := NewBreakerCompleter(next, "openai", breakerConfig(), zaptest.NewLogger(t), m)

	for i := 0; i < 3; i++ {
		_, err := b.Complete(context.Background(), "p")
		assert.ErrorIs(t, err, upstream)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, float64(gobreaker.StateOpen), testutil.ToFloat64(m.BreakerState.WithLabelValues("openai")))

	_, err := b.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, 3, next.Calls(), "open breaker must not reach the provider")
}

func TestBreakerRecoversAfterTimeout(t *testing.T) {
	fail := true
	next := &mocks.Completer{Respond: func(ctx context.Context, prompt string) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return "back", nil
	}}
	m := metrics.NewMetrics()
	b := NewBreakerCompleter(next, "openai", breakerConfig(), zaptest.NewLogger(t), m)

	for i := 0; i < 3; i++ {
		_, _ = b.Complete(context.Background(), "p")
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	fail = false
	time.Sleep(80 * time.Millisecond)

	text, err := b.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "back", text)
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, float64(gobreaker.StateClosed), testutil.ToFloat64(m.BreakerState.WithLabelValues("openai")))
}

func TestBreakerIgnoresCanceledCalls(t *testing.T) {
	next := &mocks.Completer{Respond: func(ctx context.Context, prompt string) (string, error) {
		return "", context.Canceled
	}}
	b := NewBreakerCompleter(next, "openai", breakerConfig(), zaptest.NewLogger(t), nil)

	for i := 0; i < 5; i++ {
		_, err := b.Complete(context.Background(), "p")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
