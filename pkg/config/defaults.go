package config

import (
	"path"
	"strings"

	"github.com/marmos91/dittodav/pkg/namespace"
	"github.com/marmos91/dittodav/pkg/repository"
)

// DefaultAdminUser is the principal that bootstraps backend roots.
const DefaultAdminUser = "Administrator"

// DefaultMetricsPort is the port of the metrics server.
const DefaultMetricsPort = 9090

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Store-specific defaults are handled by the factories
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyRepositoryDefaults(&cfg.Repository)
	applyContentDefaults(&cfg.Content)

	if len(cfg.Backends) == 0 {
		cfg.Backends = []BackendConfig{defaultBackend()}
	}
	applyBackendDefaults(cfg.Backends)

	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyRepositoryDefaults(cfg *RepositoryConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.AdminUser == "" {
		cfg.AdminUser = DefaultAdminUser
	}

	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
	if _, ok := cfg.Badger["db_path"]; !ok {
		cfg.Badger["db_path"] = "/tmp/dittodav-repository"
	}
}

// applyContentDefaults sets content store defaults.
func applyContentDefaults(cfg *ContentConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}

	if cfg.Filesystem == nil {
		cfg.Filesystem = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}

	// Apply defaults for all store types (for config file generation)
	if _, ok := cfg.Filesystem["path"]; !ok {
		cfg.Filesystem["path"] = "/tmp/dittodav-content"
	}
}

func applyBackendDefaults(backends []BackendConfig) {
	for i := range backends {
		b := &backends[i]

		if b.Name == "" && b.RootURL != "" {
			b.Name = path.Base(path.Clean(b.RootURL))
		}
		if b.DisplayName == "" {
			b.DisplayName = b.Name
		}
		if b.PathCacheSize == 0 {
			b.PathCacheSize = namespace.DefaultCacheSize
		}
		if len(b.RootTypes) == 0 {
			b.RootTypes = []string{repository.TypeFolder}
		}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false
	if cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
}

// defaultBackend exposes the workspaces of the default domain.
func defaultBackend() BackendConfig {
	return BackendConfig{
		Name:        "workspaces",
		DisplayName: "Workspaces",
		RootPath:    "/default-domain/workspaces",
		RootURL:     "/dav/workspaces",
		RootTypes:   []string{repository.TypeDomain, repository.TypeWorkspaceRoot},
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Backends: []BackendConfig{defaultBackend()},
	}

	ApplyDefaults(cfg)
	return cfg
}
