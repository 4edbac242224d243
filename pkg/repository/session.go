package repository

import (
	"context"
)

// Permission is a capability checked against the node ACLs.
type Permission string

const (
	PermRead            Permission = "Read"
	PermWriteProperties Permission = "WriteProperties"
	PermWrite           Permission = "Write"
	PermRemove          Permission = "Remove"
	PermEverything      Permission = "Everything"
)

// Implies reports whether holding p also grants other.
//
// Everything implies all permissions; Write implies WriteProperties.
func (p Permission) Implies(other Permission) bool {
	if p == other || p == PermEverything {
		return true
	}
	return p == PermWrite && other == PermWriteProperties
}

// Everyone is the principal name matching every user in an ACE.
const Everyone = "Everyone"

// ACE is an access control entry. The first matching entry walking from a
// node up to the root decides; no match means denied.
type ACE struct {
	Principal  string     `json:"principal"`
	Permission Permission `json:"permission"`
	Granted    bool       `json:"granted"`
}

// NodeSpec describes a node to create.
type NodeSpec struct {
	// Name is the path segment under the parent (required, no '/')
	Name string

	// Type is a document type from the repository's type registry
	Type string

	// Title defaults to Name when empty
	Title string

	// Payload is attached when the type holds payloads
	Payload *Payload
}

// Session is a principal-bound view over a repository.
//
// Every method that mutates checks the principal's permissions. Sessions of
// the same repository observe each other's writes immediately; concurrent
// conflicting writes are serialized by the repository and the loser gets a
// StoreError (typically ErrAlreadyExists).
//
// Thread Safety:
// Implementations must be safe for concurrent use.
type Session interface {
	// Principal returns the name of the acting user
	Principal() string

	// Exists reports whether a node (of any lifecycle state) is at ref
	Exists(ctx context.Context, ref Ref) (bool, error)

	// Get returns the node at ref, or ErrNotFound
	Get(ctx context.Context, ref Ref) (*Node, error)

	// Children returns every child of the container at ref in the
	// repository's native order, including deleted and hidden ones
	Children(ctx context.Context, ref Ref) ([]*Node, error)

	// Create creates a node under parent. Requires Write on the parent.
	Create(ctx context.Context, parent Ref, spec NodeSpec) (*Node, error)

	// Save persists title and payload changes of an existing node.
	// Requires WriteProperties. A payload with an empty MediaType gets one
	// recomputed from its filename and content.
	Save(ctx context.Context, node *Node) (*Node, error)

	// Move moves (and optionally renames) the node under newParent.
	// The node's descendants follow it.
	Move(ctx context.Context, ref Ref, newParent Ref, newName string) (*Node, error)

	// Copy deep-copies the node under newParent with newName.
	Copy(ctx context.Context, ref Ref, newParent Ref, newName string) (*Node, error)

	// SetLifecycleState changes the lifecycle state of the node.
	SetLifecycleState(ctx context.Context, ref Ref, state LifecycleState) (*Node, error)

	// SetLock locks the node for the principal. Locking an already held
	// lock returns it; a lock held by another principal fails with ErrLocked.
	SetLock(ctx context.Context, ref Ref) (*Lock, error)

	// RemoveLock removes any lock on the node.
	RemoveLock(ctx context.Context, ref Ref) error

	// GetLock returns the lock, or nil if the node is unlocked.
	GetLock(ctx context.Context, ref Ref) (*Lock, error)

	// HasPermission checks the principal's permission on the node.
	HasPermission(ctx context.Context, ref Ref, perm Permission) (bool, error)

	// Close releases the session.
	Close() error
}

// TrashService soft-deletes nodes: their lifecycle state becomes
// StateDeleted but they keep their place in the tree.
type TrashService interface {
	Trash(ctx context.Context, session Session, nodes []*Node) error
}

// FileImporter creates or updates a leaf from a payload, choosing the
// document type from the payload's media type.
type FileImporter interface {
	// CreateFromPayload creates a node named name under parentPath. When
	// overwrite is true and a live node with that name exists, its payload
	// is replaced instead.
	CreateFromPayload(ctx context.Context, session Session, payload *Payload, parentPath string, overwrite bool, name string) (*Node, error)
}
