// Package repository defines the ID-based, soft-deleting document
// repository the namespace adapter runs against.
//
// The repository stores a tree of typed nodes addressed by path or by stable
// identifier. Nodes are never removed by the namespace layer: deletion moves
// a node to the StateDeleted lifecycle state, leaving it in place as a
// "trash occupant" of its name.
//
// Implementations:
//   - memory: volatile maps, used by tests and ephemeral setups
//   - badger: persistent node records in BadgerDB, payloads in a content.Store
package repository

import "context"

// Repository opens principal-bound sessions.
type Repository interface {
	// Open returns a session acting as principal.
	Open(principal string) Session

	// SetACL replaces the access control list of a node. This is an
	// administrative operation that bypasses permission checks.
	SetACL(ctx context.Context, ref Ref, aces []ACE) error

	// Close releases the resources of the repository.
	Close() error
}
