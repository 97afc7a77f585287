package provider

import (
	"github.com/teilomillet/chatintel/config"
	"github.com/teilomillet/chatintel/server/metrics"
	"go.uber.org/zap"
)

// New builds the completer used by the gateway: a gollm client, guarded by
// the circuit breaker when enabled and instrumented when m is non-nil.
func New(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (Completer, error) {
	llm, err := NewLLMCompleter(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return Wrap(llm, cfg, logger, m), nil
}

// Wrap layers the circuit breaker and instrumentation configured in cfg
// around base.
func Wrap(base Completer, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) Completer {
	c := base
	if cfg.CircuitBreaker.Enabled {
		c = NewBreakerCompleter(c, cfg.Provider.Name, cfg.CircuitBreaker, logger, m)
	}
	if m != nil {
		c = Instrument(c, cfg.Provider.Name, m)
	}

	logger.Info("Completion provider configured",
		zap.String("provider", cfg.Provider.Name),
		zap.String("model", cfg.Provider.Model),
		zap.Bool("circuit_breaker", cfg.CircuitBreaker.Enabled),
	)
	return c
}
