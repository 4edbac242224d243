package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/internal/ratelimiter"
	"github.com/marmos91/dittodav/pkg/content"
	contentFs "github.com/marmos91/dittodav/pkg/content/fs"
	contentMemory "github.com/marmos91/dittodav/pkg/content/memory"
	contentS3 "github.com/marmos91/dittodav/pkg/content/s3"
	"github.com/marmos91/dittodav/pkg/metrics"
	"github.com/marmos91/dittodav/pkg/namespace"
	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/marmos91/dittodav/pkg/repository/badger"
	"github.com/marmos91/dittodav/pkg/repository/memory"
)

// CreateContentStore creates a payload content store based on configuration.
//
// This factory function uses the Type field to determine which store implementation
// to create, then decodes the type-specific configuration from the corresponding
// map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/content/memory (volatile)
//   - "filesystem": Uses pkg/content/fs (local filesystem storage)
//   - "s3": Uses pkg/content/s3 (Amazon S3 or compatible storage)
//
// A non-zero rate_limit wraps the result in content.RateLimitedStore.
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Content store configuration
//
// Returns:
//   - content.Store: Initialized content store
//   - error: Configuration or initialization error
func CreateContentStore(ctx context.Context, cfg *ContentConfig) (content.Store, error) {
	var (
		store content.Store
		err   error
	)
	switch cfg.Type {
	case "memory":
		store, err = contentMemory.NewMemoryContentStore(ctx)
	case "filesystem":
		store, err = createFilesystemContentStore(ctx, cfg.Filesystem)
	case "s3":
		store, err = createS3ContentStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown content store type: %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if rl := cfg.RateLimit; rl.RequestsPerSecond > 0 {
		logger.Info("Content store rate limited to %d req/s (burst %d)", rl.RequestsPerSecond, rl.Burst)
		store = content.NewRateLimitedStore(store, ratelimiter.New(rl.RequestsPerSecond, rl.Burst))
	}
	return store, nil
}

// createFilesystemContentStore creates a filesystem-based content store.
func createFilesystemContentStore(ctx context.Context, options map[string]any) (content.Store, error) {
	type FilesystemContentStoreConfig struct {
		Path string `mapstructure:"path"`
	}

	var storeCfg FilesystemContentStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem content store config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("filesystem content store: path is required")
	}

	store, err := contentFs.NewFSContentStore(ctx, storeCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem content store: %w", err)
	}

	return store, nil
}

// s3Options is the decoded form of the content.s3 section.
type s3Options struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

func decodeS3Options(options map[string]any) (s3Options, error) {
	var opts s3Options
	if err := mapstructure.Decode(options, &opts); err != nil {
		return opts, fmt.Errorf("failed to decode S3 content store config: %w", err)
	}

	if opts.Bucket == "" {
		return opts, fmt.Errorf("S3 content store: bucket is required")
	}
	if opts.Region == "" {
		return opts, fmt.Errorf("S3 content store: region is required")
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 10
	}
	return opts, nil
}

// createS3ContentStore creates an S3-based content store.
func createS3ContentStore(ctx context.Context, options map[string]any) (content.Store, error) {
	storeCfg, err := decodeS3Options(options)
	if err != nil {
		return nil, err
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	configOptions := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(storeCfg.Region),
	}

	// Static credentials when provided, otherwise the default credential chain
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = storeCfg.MaxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Custom endpoints (MinIO, Localstack) need path-style addressing
		if storeCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(storeCfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	// ========================================================================
	// Step 3: Create S3 Content Store
	// ========================================================================

	store, err := contentS3.NewS3ContentStore(ctx, contentS3.S3ContentStoreConfig{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 content store: %w", err)
	}

	logger.Info("S3 content store initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)

	return store, nil
}

// CreateRepository creates the document repository based on configuration.
//
// Supported types:
//   - "memory": Uses pkg/repository/memory (ephemeral, payloads inline)
//   - "badger": Uses pkg/repository/badger with payloads in the configured
//     content store
//
// The root ACL of a new repository grants Everything to the admin user,
// followed by the configured entries (or Everything to Everyone when none
// are configured).
func CreateRepository(ctx context.Context, cfg *Config) (repository.Repository, error) {
	rootACL := buildRootACL(&cfg.Repository)

	switch cfg.Repository.Type {
	case "memory":
		repo, err := memory.NewMemoryRepository(ctx, memory.Config{RootACL: rootACL})
		if err != nil {
			return nil, fmt.Errorf("failed to create memory repository: %w", err)
		}
		return repo, nil
	case "badger":
		return createBadgerRepository(ctx, cfg, rootACL)
	default:
		return nil, fmt.Errorf("unknown repository type: %q (supported: memory, badger)", cfg.Repository.Type)
	}
}

func createBadgerRepository(ctx context.Context, cfg *Config, rootACL []repository.ACE) (repository.Repository, error) {
	type BadgerRepositoryOptions struct {
		DBPath           string `mapstructure:"db_path"`
		BlockCacheSizeMB int64  `mapstructure:"block_cache_size_mb"`
		IndexCacheSizeMB int64  `mapstructure:"index_cache_size_mb"`
	}

	var opts BadgerRepositoryOptions
	if err := mapstructure.Decode(cfg.Repository.Badger, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode badger repository options: %w", err)
	}
	if opts.DBPath == "" {
		return nil, fmt.Errorf("badger repository: db_path is required")
	}

	payloads, err := CreateContentStore(ctx, &cfg.Content)
	if err != nil {
		return nil, err
	}

	repo, err := badger.NewBadgerRepository(ctx, badger.Config{
		DBPath:           opts.DBPath,
		Payloads:         payloads,
		RootACL:          rootACL,
		BlockCacheSizeMB: opts.BlockCacheSizeMB,
		IndexCacheSizeMB: opts.IndexCacheSizeMB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger repository: %w", err)
	}

	logger.Info("Badger repository opened: path=%s, content=%s", opts.DBPath, cfg.Content.Type)
	return repo, nil
}

func buildRootACL(cfg *RepositoryConfig) []repository.ACE {
	acl := []repository.ACE{
		{Principal: cfg.AdminUser, Permission: repository.PermEverything, Granted: true},
	}
	if len(cfg.RootACL) == 0 {
		return append(acl, repository.ACE{
			Principal: repository.Everyone, Permission: repository.PermEverything, Granted: true,
		})
	}
	for _, ace := range cfg.RootACL {
		acl = append(acl, repository.ACE{
			Principal:  ace.Principal,
			Permission: repository.Permission(ace.Permission),
			Granted:    !ace.Deny,
		})
	}
	return acl
}

// BootstrapBackends creates the root path of every backend that does not
// exist yet, acting as the admin user. Existing containers are kept.
func BootstrapBackends(ctx context.Context, repo repository.Repository, cfg *Config) error {
	admin := repo.Open(cfg.Repository.AdminUser)
	defer func() { _ = admin.Close() }()

	for i, b := range cfg.Backends {
		root, err := repository.EnsurePath(ctx, admin, b.RootPath, b.RootTypes...)
		if err != nil {
			return fmt.Errorf("failed to bootstrap backends[%d] %q: %w", i, b.Name, err)
		}
		if !root.IsFolder() {
			return fmt.Errorf("backends[%d] %q: root path %s is not a container", i, b.Name, b.RootPath)
		}
		logger.Debug("Backend %s rooted at %s (%s)", b.Name, root.Path, root.Type)
	}
	return nil
}

// CreateBackend creates a namespace backend over session.
//
// Parameters:
//   - session: Repository session of the acting principal
//   - cfg: Backend configuration (defaults applied)
//   - m: Namespace metrics (nil uses a no-op implementation)
func CreateBackend(session repository.Session, cfg *BackendConfig, m metrics.NamespaceMetrics) (*namespace.Backend, error) {
	backend, err := namespace.New(session, namespace.Config{
		Name:             cfg.Name,
		DisplayName:      cfg.DisplayName,
		RootPath:         cfg.RootPath,
		RootURL:          cfg.RootURL,
		AlwaysCreateFile: cfg.AlwaysCreateFile,
		CacheSize:        cfg.PathCacheSize,
	}, namespace.Dependencies{Metrics: m})
	if err != nil {
		return nil, fmt.Errorf("failed to create backend %q: %w", cfg.Name, err)
	}
	return backend, nil
}
