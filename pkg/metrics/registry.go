// Package metrics exposes namespace activity to Prometheus.
//
// Backends report through NamespaceMetrics. When no registry has been
// initialised every constructor hands out the no-op implementation, so a
// backend built without metrics pays nothing for the calls.
//
//	metrics.InitRegistry()
//	m := prometheus.NewNamespaceMetrics("workspaces")
//	backend, err := namespace.New(session, cfg, namespace.Dependencies{Metrics: m})
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry creates the process registry the namespace collectors and
// the /metrics server share. Only the first call has an effect.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the shared registry, or nil while metrics are off.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has run.
func IsEnabled() bool {
	return GetRegistry() != nil
}
