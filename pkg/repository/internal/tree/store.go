// Package tree implements repository.Session semantics over a pluggable
// transactional node store. The memory and badger repositories provide the
// Store; everything about paths, permissions, locks and lifecycle lives here
// so that both behave identically.
package tree

import (
	"context"

	"github.com/marmos91/dittodav/pkg/repository"
)

// Txn is a view of the node store inside a transaction.
//
// GetNode returns a StoreError with ErrNotFound for unknown identifiers.
// Nodes returned by GetNode are owned by the caller.
type Txn interface {
	RootID() (string, error)
	SetRootID(id string) error

	GetNode(id string) (*repository.Node, error)
	PutNode(node *repository.Node) error

	// ChildIDs returns the children identifiers in native order
	ChildIDs(parentID string) ([]string, error)
	ChildID(parentID, name string) (string, bool, error)
	LinkChild(parentID, name, childID string) error
	UnlinkChild(parentID, name string) error

	GetACL(id string) ([]repository.ACE, error)
	PutACL(id string, aces []repository.ACE) error
}

// Store runs functions inside read-only or read-write transactions. A
// failing Update leaves the store unchanged. ctx bounds any I/O the store
// performs on behalf of the transaction (payload reads and writes).
type Store interface {
	View(ctx context.Context, fn func(txn Txn) error) error
	Update(ctx context.Context, fn func(txn Txn) error) error
}
