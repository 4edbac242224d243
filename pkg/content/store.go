// Package content stores the binary payloads attached to repository leaves.
//
// The persistent repository keeps node records in badger and delegates the
// payload bytes to a Store keyed by the node identifier. Three backends are
// provided: memory (tests, ephemeral setups), fs (a local directory) and s3
// (Amazon S3 or any S3-compatible service).
package content

import (
	"context"
	"fmt"
	"io"
)

// ID identifies a payload. Repositories use the owning node's identifier.
type ID string

// Store is the payload storage contract.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
// Concurrent writes to the same ID are last-write-wins.
type Store interface {
	// WriteContent stores data under id, replacing any previous content.
	WriteContent(ctx context.Context, id ID, data []byte) error

	// ReadContent returns a reader over the content. The caller must close it.
	// Returns ErrContentNotFound (wrapped) if nothing is stored under id.
	ReadContent(ctx context.Context, id ID) (io.ReadCloser, error)

	// ContentExists reports whether content is stored under id.
	ContentExists(ctx context.Context, id ID) (bool, error)

	// Delete removes the content. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id ID) error
}

// ReadAll reads the whole content stored under id.
func ReadAll(ctx context.Context, s Store, id ID) ([]byte, error) {
	rc, err := s.ReadContent(ctx, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read content %s: %w", id, err)
	}
	return data, nil
}

// ValidateID rejects empty identifiers.
func ValidateID(id ID) error {
	if id == "" {
		return ErrInvalidID
	}
	return nil
}
