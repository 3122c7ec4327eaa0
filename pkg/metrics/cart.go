package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics counts cart mutations by operation and outcome.
type CartMetrics struct {
	operations *prometheus.CounterVec
}

// NewCartMetrics registers the cart counters on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Cart mutations partitioned by operation and outcome.",
	}, []string{"op", "outcome"})
	reg.MustRegister(operations)
	return &CartMetrics{operations: operations}
}

// Observe records one cart operation.
func (c *CartMetrics) Observe(op, outcome string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}
