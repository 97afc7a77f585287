package provider

import (
	"context"
	"errors"
	"time"

	"github.com/teilomillet/chatintel/server/metrics"
)

type instrumentedCompleter struct {
	next Completer
	name string
	m    *metrics.Metrics
}

// Instrument records call counts and latency of next under the provider label name.
// Calls rejected by the circuit breaker are counted with status "rejected".
func Instrument(next Completer, name string, m *metrics.Metrics) Completer {
	return &instrumentedCompleter{next: next, name: name, m: m}
}

func (c *instrumentedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.next.Complete(ctx, prompt)

	status := "success"
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		status = "rejected"
	case err != nil:
		status = "error"
	}

	c.m.ProviderRequests.WithLabelValues(c.name, status).Inc()
	if status != "rejected" {
		c.m.ProviderDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}

	return text, err
}
