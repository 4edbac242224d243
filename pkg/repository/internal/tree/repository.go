package tree

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittodav/pkg/repository"
)

// Repository is the shared engine behind every repository implementation.
type Repository struct {
	store Store
	types repository.TypeRegistry
	now   func() time.Time
}

// New creates an engine over store. A nil registry uses the default types.
func New(store Store, types repository.TypeRegistry) *Repository {
	if types == nil {
		types = repository.DefaultTypes()
	}
	return &Repository{store: store, types: types, now: time.Now}
}

// SetClock replaces the time source (tests).
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}

// Types returns the document type registry.
func (r *Repository) Types() repository.TypeRegistry {
	return r.types
}

// Bootstrap creates the root node when the store is empty. rootACL is only
// applied to a newly created root.
func (r *Repository) Bootstrap(ctx context.Context, rootACL []repository.ACE) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Update(ctx, func(txn Txn) error {
		if id, err := txn.RootID(); err != nil {
			return err
		} else if id != "" {
			return nil
		}

		rootType, ok := r.types.Lookup(repository.TypeRoot)
		if !ok {
			return fmt.Errorf("type registry has no %s type", repository.TypeRoot)
		}
		now := r.now()
		root := &repository.Node{
			ID:       uuid.NewString(),
			Path:     "/",
			State:    repository.StateActive,
			Created:  now,
			Modified: now,
		}
		rootType.Instantiate(root)

		if err := txn.PutNode(root); err != nil {
			return err
		}
		if err := txn.PutACL(root.ID, rootACL); err != nil {
			return err
		}
		return txn.SetRootID(root.ID)
	})
}

// Open returns a session bound to principal.
func (r *Repository) Open(principal string) repository.Session {
	return &Session{repo: r, principal: principal}
}

// SetACL replaces the ACL of a node. This is an administrative operation
// and bypasses permission checks.
func (r *Repository) SetACL(ctx context.Context, ref repository.Ref, aces []repository.ACE) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Update(ctx, func(txn Txn) error {
		node, err := resolve(txn, ref)
		if err != nil {
			return err
		}
		return txn.PutACL(node.ID, aces)
	})
}

// resolve returns the node addressed by ref.
func resolve(txn Txn, ref repository.Ref) (*repository.Node, error) {
	if ref.IsZero() {
		return nil, repository.NewStoreError(repository.ErrInvalidArgument, "empty reference", "")
	}
	if ref.IsID() {
		return txn.GetNode(ref.Value())
	}

	rootID, err := txn.RootID()
	if err != nil {
		return nil, err
	}
	if rootID == "" {
		return nil, repository.NewStoreError(repository.ErrNotFound, "repository not bootstrapped", ref.Value())
	}

	id := rootID
	for _, segment := range strings.Split(ref.Value(), "/") {
		if segment == "" {
			continue
		}
		childID, ok, err := txn.ChildID(id, segment)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, repository.NewStoreError(repository.ErrNotFound, "node not found", ref.Value())
		}
		id = childID
	}
	return txn.GetNode(id)
}

// allowed walks from node up to the root; the first ACE matching the
// principal and implying perm decides.
func allowed(txn Txn, node *repository.Node, principal string, perm repository.Permission) (bool, error) {
	current := node
	for current != nil {
		aces, err := txn.GetACL(current.ID)
		if err != nil {
			return false, err
		}
		for _, ace := range aces {
			if ace.Principal != principal && ace.Principal != repository.Everyone {
				continue
			}
			if ace.Permission.Implies(perm) {
				return ace.Granted, nil
			}
		}
		if current.ParentID == "" {
			break
		}
		current, err = txn.GetNode(current.ParentID)
		if err != nil {
			return false, err
		}
	}
	return false, nil
}
