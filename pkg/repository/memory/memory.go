// Package memory provides a volatile, in-process document repository.
//
// It is the default backend of the CLI and the repository used by the
// namespace adapter tests. Node records and payloads live in Go maps and
// are lost when the process exits.
package memory

import (
	"context"
	"fmt"

	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/marmos91/dittodav/pkg/repository/internal/tree"
)

// Config contains configuration for creating a memory repository.
type Config struct {
	// Types is the document type registry (nil uses repository.DefaultTypes)
	Types repository.TypeRegistry

	// RootACL is applied to the root node. Nil grants Everything to Everyone.
	RootACL []repository.ACE
}

// MemoryRepository is an in-memory repository.
//
// Thread Safety:
// Safe for concurrent use. Reads share a read lock, each mutation holds the
// write lock for the duration of its transaction.
type MemoryRepository struct {
	*tree.Repository
}

// NewMemoryRepository creates and bootstraps an empty repository holding
// only the root node.
func NewMemoryRepository(ctx context.Context, cfg Config) (*MemoryRepository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rootACL := cfg.RootACL
	if rootACL == nil {
		rootACL = []repository.ACE{
			{Principal: repository.Everyone, Permission: repository.PermEverything, Granted: true},
		}
	}

	engine := tree.New(newNodeStore(), cfg.Types)
	if err := engine.Bootstrap(ctx, rootACL); err != nil {
		return nil, fmt.Errorf("failed to bootstrap memory repository: %w", err)
	}
	return &MemoryRepository{Repository: engine}, nil
}

// Close is a no-op; it exists so that every repository satisfies io.Closer.
func (r *MemoryRepository) Close() error {
	return nil
}
