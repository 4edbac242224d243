package prometheus

import (
	"sync"
	"time"

	"github.com/marmos91/dittodav/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// namespaceCollectors are registered once per process; every backend gets
// a view curried with its own label.
type namespaceCollectors struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec
	resolutions       *prometheus.CounterVec
	cacheEntries      *prometheus.GaugeVec
}

var (
	collectors     *namespaceCollectors
	collectorsOnce sync.Once
)

func getCollectors(reg *prometheus.Registry) *namespaceCollectors {
	collectorsOnce.Do(func() {
		collectors = &namespaceCollectors{
			operationsTotal: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "dittodav_namespace_operations_total",
					Help: "Total number of namespace operations by backend, operation and status",
				},
				[]string{"backend", "operation", "status"},
			),
			operationDuration: promauto.With(reg).NewHistogramVec(
				prometheus.HistogramOpts{
					Name: "dittodav_namespace_operation_duration_milliseconds",
					Help: "Duration of namespace operations in milliseconds",
					Buckets: []float64{
						0.1,  // 100µs
						1,    // 1ms
						10,   // 10ms
						100,  // 100ms
						1000, // 1s
					},
				},
				[]string{"backend", "operation"},
			),
			cacheLookups: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "dittodav_namespace_path_cache_lookups_total",
					Help: "Path cache lookups by result (hit or miss)",
				},
				[]string{"backend", "result"},
			),
			resolutions: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "dittodav_namespace_resolutions_total",
					Help: "Location resolutions by the strategy that produced the result",
				},
				[]string{"backend", "strategy"},
			),
			cacheEntries: promauto.With(reg).NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "dittodav_namespace_path_cache_entries",
					Help: "Current number of path cache entries",
				},
				[]string{"backend"},
			),
		}
	})
	return collectors
}

// namespaceMetrics is the Prometheus implementation of metrics.NamespaceMetrics.
type namespaceMetrics struct {
	backend string
	c       *namespaceCollectors
}

// NewNamespaceMetrics creates a Prometheus-backed NamespaceMetrics for the
// named backend.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewNamespaceMetrics(backend string) metrics.NamespaceMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopNamespaceMetrics()
	}
	return &namespaceMetrics{
		backend: backend,
		c:       getCollectors(metrics.GetRegistry()),
	}
}

func (m *namespaceMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.c.operationsTotal.WithLabelValues(m.backend, operation, status).Inc()
	m.c.operationDuration.WithLabelValues(m.backend, operation).Observe(duration.Seconds() * 1000) // Convert to milliseconds
}

func (m *namespaceMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.c.cacheLookups.WithLabelValues(m.backend, result).Inc()
}

func (m *namespaceMetrics) RecordResolution(strategy string) {
	m.c.resolutions.WithLabelValues(m.backend, strategy).Inc()
}

func (m *namespaceMetrics) SetCacheEntries(n int) {
	m.c.cacheEntries.WithLabelValues(m.backend).Set(float64(n))
}
