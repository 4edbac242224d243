package config

import (
	"github.com/marmos91/dittodav/pkg/metrics"
	promMetrics "github.com/marmos91/dittodav/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// Backends maps backend names to their collectors (never nil, no-op if disabled)
	Backends map[string]metrics.NamespaceMetrics
}

// For returns the collector of the named backend, or a no-op one.
func (r *MetricsResult) For(backend string) metrics.NamespaceMetrics {
	if m, ok := r.Backends[backend]; ok {
		return m
	}
	return metrics.NewNoopNamespaceMetrics()
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed collectors for every backend
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
func InitializeMetrics(cfg *Config) *MetricsResult {
	result := &MetricsResult{Backends: make(map[string]metrics.NamespaceMetrics, len(cfg.Backends))}

	if !cfg.Metrics.Enabled {
		for _, b := range cfg.Backends {
			result.Backends[b.Name] = metrics.NewNoopNamespaceMetrics()
		}
		return result
	}

	metrics.InitRegistry()

	result.Server = metrics.NewServer(metrics.ServerConfig{
		Port: cfg.Metrics.Port,
	})

	for _, b := range cfg.Backends {
		result.Backends[b.Name] = promMetrics.NewNamespaceMetrics(b.Name)
	}

	return result
}
