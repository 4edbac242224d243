package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/marmos91/dittodav/internal/logger"
)

// Config represents the complete DittoDAV configuration.
//
// This structure captures all configurable aspects of the adapter:
//   - Logging configuration
//   - Repository selection and configuration (type-specific)
//   - Payload content store selection and configuration (type-specific)
//   - Namespace backend definitions
//   - Metrics exposition
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (DITTODAV_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each store implementation defines its own options and the factory decodes
// the type-specific map (e.g., repository.badger, content.s3) matching the
// selected type. Sections for other types are ignored.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Repository specifies the document repository type and its options
	Repository RepositoryConfig `mapstructure:"repository" yaml:"repository"`

	// Content specifies where payload bytes of a persistent repository live
	Content ContentConfig `mapstructure:"content" yaml:"content"`

	// Backends defines the namespace roots exposed to clients
	Backends []BackendConfig `mapstructure:"backends" yaml:"backends" validate:"required,min=1,dive"`

	// Metrics controls the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`

	// MaxSizeMB rotates a log file once it reaches this size (file output only)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"gte=0"`

	// MaxBackups is the number of rotated log files kept (file output only)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
}

// RepositoryConfig specifies the document repository.
type RepositoryConfig struct {
	// Type specifies which repository implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger"`

	// AdminUser is the principal used to bootstrap backend root paths.
	// It always receives Everything on the repository root.
	AdminUser string `mapstructure:"admin_user" yaml:"admin_user" validate:"required"`

	// RootACL is applied to the root node of a new repository, after the
	// admin entry. Empty grants Everything to Everyone.
	RootACL []ACEConfig `mapstructure:"root_acl" yaml:"root_acl,omitempty" validate:"dive"`
}

// ACEConfig is one access control entry of the root ACL.
type ACEConfig struct {
	Principal  string `mapstructure:"principal" yaml:"principal" validate:"required"`
	Permission string `mapstructure:"permission" yaml:"permission" validate:"required,oneof=Read WriteProperties Write Remove Everything"`

	// Deny turns the entry into a denial
	Deny bool `mapstructure:"deny" yaml:"deny,omitempty"`
}

// ContentConfig specifies the payload content store.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
// The memory repository keeps payloads inline and ignores this section.
type ContentConfig struct {
	// Type specifies which content store implementation to use
	// Valid values: memory, filesystem, s3
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory filesystem s3"`

	// Filesystem contains filesystem-specific configuration
	// Only used when Type = "filesystem"
	Filesystem map[string]any `mapstructure:"filesystem" yaml:"filesystem"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3" yaml:"s3"`

	// RateLimit throttles requests to the store; zero disables it
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig is a token bucket applied to content store requests.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate (0 = unlimited)
	RequestsPerSecond uint `mapstructure:"requests_per_second" yaml:"requests_per_second"`

	// Burst is the bucket capacity (0 = RequestsPerSecond)
	Burst uint `mapstructure:"burst" yaml:"burst"`
}

// BackendConfig defines a single namespace backend.
type BackendConfig struct {
	// Name identifies the backend (defaults to the last segment of RootURL)
	Name string `mapstructure:"name" yaml:"name"`

	// DisplayName is shown to clients (defaults to Name)
	DisplayName string `mapstructure:"display_name" yaml:"display_name,omitempty"`

	// RootPath is the repository path the backend exposes
	RootPath string `mapstructure:"root_path" yaml:"root_path" validate:"required,startswith=/"`

	// RootURL is the URL prefix clients address the backend with
	RootURL string `mapstructure:"root_url" yaml:"root_url" validate:"required,startswith=/"`

	// RootTypes are the document types of the containers created along
	// RootPath at bootstrap, one per segment. The last one is reused.
	RootTypes []string `mapstructure:"root_types" yaml:"root_types,omitempty"`

	// AlwaysCreateFile creates plain File documents instead of going
	// through the file importer
	AlwaysCreateFile bool `mapstructure:"always_create_file" yaml:"always_create_file"`

	// PathCacheSize bounds the number of resolved paths cached per session
	PathCacheSize int `mapstructure:"path_cache_size" yaml:"path_cache_size" validate:"gte=0"`
}

// MetricsConfig controls the metrics HTTP endpoint.
type MetricsConfig struct {
	// Enabled turns on Prometheus collectors and the HTTP server
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the TCP port of the metrics server
	Port int `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// Backend returns the backend configuration named name.
func (c *Config) Backend(name string) (*BackendConfig, error) {
	for i := range c.Backends {
		if c.Backends[i].Name == name {
			return &c.Backends[i], nil
		}
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DITTODAV_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: DITTODAV_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("DITTODAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only overrides keys viper already knows about
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"repository.type", "repository.admin_user",
		"content.type",
		"metrics.enabled", "metrics.port",
	} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittodav")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dittodav")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}

// LoggerConfig converts the logging section for logger.Configure.
func (c LoggingConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
	}
}
