package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records catalog operation latency and failures. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// New registers the catalog collectors with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gamestore",
			Name:      "query_duration_seconds",
			Help:      "Duration of catalog operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamestore",
			Name:      "errors_total",
			Help:      "Failed catalog operations by error kind.",
		}, []string{"op", "kind"}),
	}
	for _, c := range []prometheus.Collector{m.duration, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one operation that started at start. kind is empty on
// success.
func (m *Metrics) Observe(op string, start time.Time, kind string) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if kind != "" {
		m.failures.WithLabelValues(op, kind).Inc()
	}
}
