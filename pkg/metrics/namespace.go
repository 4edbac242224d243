package metrics

import "time"

// Resolution strategies reported by RecordResolution.
const (
	StrategyCache     = "cache"
	StrategyExact     = "exact"
	StrategyEncoded   = "encoded"
	StrategyFolder    = "folder"
	StrategyChildScan = "child_scan"
	StrategyNotFound  = "not_found"
)

// NamespaceMetrics provides observability for the namespace adapter.
//
// This interface is optional - if not provided to a namespace backend, a
// no-op implementation is used with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewNamespaceMetrics("workspaces")
//	backend, err := namespace.New(session, cfg, namespace.Dependencies{Metrics: m})
//
//	// Without metrics (no-op)
//	backend, err := namespace.New(session, cfg, namespace.Dependencies{})
type NamespaceMetrics interface {
	// RecordOperation records a completed mutation or lock operation.
	//
	// Parameters:
	//   - operation: Operation name (e.g., "CreateFolder", "Move", "Lock")
	//   - duration: Time taken to complete the operation
	//   - err: Error if the operation failed, nil if successful
	RecordOperation(operation string, duration time.Duration, err error)

	// RecordCacheLookup records a path cache lookup outcome.
	RecordCacheLookup(hit bool)

	// RecordResolution records which strategy resolved a location
	// (one of the Strategy* constants).
	RecordResolution(strategy string)

	// SetCacheEntries updates the current number of path cache entries.
	SetCacheEntries(n int)
}

// NewNoopNamespaceMetrics returns a NamespaceMetrics that discards everything.
func NewNoopNamespaceMetrics() NamespaceMetrics {
	return noopNamespaceMetrics{}
}

type noopNamespaceMetrics struct{}

func (noopNamespaceMetrics) RecordOperation(string, time.Duration, error) {}
func (noopNamespaceMetrics) RecordCacheLookup(bool)                       {}
func (noopNamespaceMetrics) RecordResolution(string)                      {}
func (noopNamespaceMetrics) SetCacheEntries(int)                          {}
