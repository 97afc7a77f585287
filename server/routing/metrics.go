package routing

import (
	"github.com/go-chi/chi/v5"
	"github.com/teilomillet/chatintel/server/metrics"
)

// RegisterMetricsRoutes exposes the Prometheus registry of m at path.
func RegisterMetricsRoutes(r chi.Router, path string, m *metrics.Metrics) {
	r.Method("GET", path, m.Handler())
}
