// Package badger provides a persistent document repository backed by
// BadgerDB, with payload bytes delegated to a content.Store.
package badger

import (
	"context"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/pkg/content"
	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/marmos91/dittodav/pkg/repository/internal/tree"
)

// BadgerRepository implements repository.Repository using BadgerDB.
//
// Key Features:
//   - Persistent node records with crash recovery (WAL-based)
//   - ACID transactions: a failed mutation leaves no partial tree change
//   - Children listed with prefix range scans
//
// Thread Safety:
// BadgerDB transactions are serializable; conflicting concurrent updates are
// retried a bounded number of times before the error is returned.
type BadgerRepository struct {
	*tree.Repository

	db *badger.DB
}

// Config contains configuration for creating a BadgerDB repository.
type Config struct {
	// DBPath is the directory where BadgerDB will store its files
	DBPath string

	// Payloads stores the binary content of leaves (required)
	Payloads content.Store

	// Types is the document type registry (nil uses repository.DefaultTypes)
	Types repository.TypeRegistry

	// RootACL is applied when the root node is first created.
	// Nil grants Everything to Everyone.
	RootACL []repository.ACE

	// BadgerOptions allows customization of BadgerDB behavior.
	// If nil, sensible defaults are used.
	BadgerOptions *badger.Options

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 64)
	BlockCacheSizeMB int64

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 32)
	IndexCacheSizeMB int64
}

// NewBadgerRepository opens (or creates) a repository at cfg.DBPath.
//
// The root node is created on first open. Reopening an existing database
// keeps its tree and ignores cfg.RootACL.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - cfg: Configuration including DB path and payload store
//
// Returns:
//   - *BadgerRepository: Repository ready for use
//   - error: Error if database initialization fails or context is cancelled
func NewBadgerRepository(ctx context.Context, cfg Config) (*BadgerRepository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Payloads == nil {
		return nil, fmt.Errorf("badger repository: payload store is required")
	}

	// Prepare BadgerDB options
	var opts badger.Options
	if cfg.BadgerOptions != nil {
		opts = *cfg.BadgerOptions
	} else {
		opts = badger.DefaultOptions(cfg.DBPath)
		opts = opts.WithLoggingLevel(badger.WARNING) // Reduce log noise
		opts = opts.WithCompression(options.None)    // Node records are small

		blockCacheMB := cfg.BlockCacheSizeMB
		if blockCacheMB == 0 {
			blockCacheMB = 64
		}
		indexCacheMB := cfg.IndexCacheSizeMB
		if indexCacheMB == 0 {
			indexCacheMB = 32
		}
		opts = opts.WithBlockCacheSize(blockCacheMB << 20)
		opts = opts.WithIndexCacheSize(indexCacheMB << 20)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.DBPath, err)
	}

	rootACL := cfg.RootACL
	if rootACL == nil {
		rootACL = []repository.ACE{
			{Principal: repository.Everyone, Permission: repository.PermEverything, Granted: true},
		}
	}

	engine := tree.New(&nodeStore{db: db, payloads: cfg.Payloads}, cfg.Types)
	if err := engine.Bootstrap(ctx, rootACL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to bootstrap badger repository: %w", err)
	}

	logger.Debug("Badger repository opened at %s", cfg.DBPath)
	return &BadgerRepository{Repository: engine, db: db}, nil
}

// Close closes the underlying database.
func (r *BadgerRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}
