package node

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics of node calls.
type Metrics struct {
	// Requests counts calls by API path and outcome (success, node_error, unavailable).
	Requests *prometheus.CounterVec
	// RequestDuration observes call latency by API path, retries included.
	RequestDuration *prometheus.HistogramVec
	// Retries counts HTTP attempts beyond the first.
	Retries prometheus.Counter
}

// NewMetrics registers node metrics with the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry registers node metrics with a custom registry.
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tronkit_node_requests_total",
				Help: "The total number of node API calls",
			},
			[]string{"path", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tronkit_node_request_duration_seconds",
				Help:    "Duration of node API calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "tronkit_node_retries_total",
			Help: "The total number of retried node HTTP attempts",
		}),
	}
}

const (
	outcomeSuccess     = "success"
	outcomeNodeError   = "node_error"
	outcomeUnavailable = "unavailable"
)

func (m *Metrics) observe(path, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(path, outcome).Inc()
	m.RequestDuration.WithLabelValues(path).Observe(seconds)
}

func (m *Metrics) retried() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}
