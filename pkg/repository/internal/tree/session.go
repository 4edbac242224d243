package tree

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/marmos91/dittodav/pkg/mediatype"
	"github.com/marmos91/dittodav/pkg/repository"
)

var errSessionClosed = errors.New("session closed")

// Session implements repository.Session for one principal.
type Session struct {
	repo      *Repository
	principal string
	closed    atomic.Bool
}

var _ repository.Session = (*Session)(nil)

func (s *Session) Principal() string {
	return s.principal
}

func (s *Session) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *Session) enter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return errSessionClosed
	}
	return nil
}

func (s *Session) require(txn Txn, node *repository.Node, perm repository.Permission) error {
	ok, err := allowed(txn, node, s.principal, perm)
	if err != nil {
		return err
	}
	if !ok {
		return repository.NewStoreError(repository.ErrPermissionDenied,
			"permission "+string(perm)+" denied to "+s.principal, node.Path)
	}
	return nil
}

// requireUnlocked fails when another principal holds the node's lock.
func (s *Session) requireUnlocked(node *repository.Node) error {
	if node.Lock != nil && node.Lock.Owner != s.principal {
		return repository.NewStoreError(repository.ErrLocked, "locked by "+node.Lock.Owner, node.Path)
	}
	return nil
}

func (s *Session) Exists(ctx context.Context, ref repository.Ref) (bool, error) {
	if err := s.enter(ctx); err != nil {
		return false, err
	}
	var exists bool
	err := s.repo.store.View(ctx, func(txn Txn) error {
		_, err := resolve(txn, ref)
		if repository.IsNotFound(err) {
			return nil
		}
		exists = err == nil
		return err
	})
	return exists, err
}

func (s *Session) Get(ctx context.Context, ref repository.Ref) (*repository.Node, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	var node *repository.Node
	err := s.repo.store.View(ctx, func(txn Txn) error {
		n, err := resolve(txn, ref)
		if err != nil {
			return err
		}
		if err := s.require(txn, n, repository.PermRead); err != nil {
			return err
		}
		node = n
		return nil
	})
	return node, err
}

// Children returns the readable children of the container at ref.
func (s *Session) Children(ctx context.Context, ref repository.Ref) ([]*repository.Node, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	var children []*repository.Node
	err := s.repo.store.View(ctx, func(txn Txn) error {
		parent, err := resolve(txn, ref)
		if err != nil {
			return err
		}
		if !parent.IsFolder() {
			return repository.NewStoreError(repository.ErrNotDirectory, "not a container", parent.Path)
		}
		if err := s.require(txn, parent, repository.PermRead); err != nil {
			return err
		}
		ids, err := txn.ChildIDs(parent.ID)
		if err != nil {
			return err
		}
		children = make([]*repository.Node, 0, len(ids))
		for _, id := range ids {
			child, err := txn.GetNode(id)
			if err != nil {
				return err
			}
			ok, err := allowed(txn, child, s.principal, repository.PermRead)
			if err != nil {
				return err
			}
			if ok {
				children = append(children, child)
			}
		}
		return nil
	})
	return children, err
}

func (s *Session) Create(ctx context.Context, parentRef repository.Ref, spec repository.NodeSpec) (*repository.Node, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	if err := repository.ValidateName(spec.Name); err != nil {
		return nil, err
	}
	docType, ok := s.repo.types.Lookup(spec.Type)
	if !ok {
		return nil, repository.NewStoreError(repository.ErrInvalidArgument, "unknown document type "+spec.Type, spec.Name)
	}

	var created *repository.Node
	err := s.repo.store.Update(ctx, func(txn Txn) error {
		parent, err := resolve(txn, parentRef)
		if err != nil {
			return err
		}
		if !parent.IsFolder() {
			return repository.NewStoreError(repository.ErrNotDirectory, "parent is not a container", parent.Path)
		}
		if err := s.require(txn, parent, repository.PermWrite); err != nil {
			return err
		}
		if _, exists, err := txn.ChildID(parent.ID, spec.Name); err != nil {
			return err
		} else if exists {
			return repository.NewStoreError(repository.ErrAlreadyExists, "name already used",
				repository.JoinPath(parent.Path, spec.Name))
		}

		now := s.repo.now()
		node := &repository.Node{
			ID:       uuid.NewString(),
			ParentID: parent.ID,
			Path:     repository.JoinPath(parent.Path, spec.Name),
			Name:     spec.Name,
			Title:    spec.Title,
			State:    repository.StateActive,
			Created:  now,
			Modified: now,
		}
		if node.Title == "" {
			node.Title = spec.Name
		}
		docType.Instantiate(node)
		if docType.HoldsPayload && spec.Payload != nil {
			node.Payload = normalizePayload(spec.Payload.Clone())
		}

		if err := txn.PutNode(node); err != nil {
			return err
		}
		if err := txn.LinkChild(parent.ID, node.Name, node.ID); err != nil {
			return err
		}
		created = node
		return nil
	})
	return created, err
}

// Save persists the title and payload of node.
func (s *Session) Save(ctx context.Context, node *repository.Node) (*repository.Node, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	var saved *repository.Node
	err := s.repo.store.Update(ctx, func(txn Txn) error {
		stored, err := txn.GetNode(node.ID)
		if err != nil {
			return err
		}
		if err := s.require(txn, stored, repository.PermWriteProperties); err != nil {
			return err
		}
		if err := s.requireUnlocked(stored); err != nil {
			return err
		}

		stored.Title = node.Title
		if docType, ok := s.repo.types.Lookup(stored.Type); ok && docType.HoldsPayload {
			stored.Payload = normalizePayload(node.Payload.Clone())
		}
		stored.Modified = s.repo.now()

		if err := txn.PutNode(stored); err != nil {
			return err
		}
		saved = stored
		return nil
	})
	return saved, err
}

func (s *Session) Move(ctx context.Context, ref repository.Ref, newParentRef repository.Ref, newName string) (*repository.Node, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	if err := repository.ValidateName(newName); err != nil {
		return nil, err
	}
	var moved *repository.Node
	err := s.repo.store.Update(ctx, func(txn Txn) error {
		node, err := resolve(txn, ref)
		if err != nil {
			return err
		}
		if node.ParentID == "" {
			return repository.NewStoreError(repository.ErrInvalidArgument, "cannot move the root", node.Path)
		}
		target, err := resolve(txn, newParentRef)
		if err != nil {
			return err
		}
		if !target.IsFolder() {
			return repository.NewStoreError(repository.ErrNotDirectory, "target is not a container", target.Path)
		}
		if isSelfOrDescendant(target.Path, node.Path) {
			return repository.NewStoreError(repository.ErrInvalidArgument, "cannot move a node under itself", target.Path)
		}
		if err := s.require(txn, node, repository.PermWrite); err != nil {
			return err
		}
		if err := s.require(txn, target, repository.PermWrite); err != nil {
			return err
		}
		if err := s.requireUnlocked(node); err != nil {
			return err
		}
		if target.ID == node.ParentID && newName == node.Name {
			moved = node
			return nil
		}
		if _, exists, err := txn.ChildID(target.ID, newName); err != nil {
			return err
		} else if exists {
			return repository.NewStoreError(repository.ErrAlreadyExists, "name already used",
				repository.JoinPath(target.Path, newName))
		}

		if err := txn.UnlinkChild(node.ParentID, node.Name); err != nil {
			return err
		}
		node.ParentID = target.ID
		node.Name = newName
		node.Modified = s.repo.now()
		if err := txn.LinkChild(target.ID, newName, node.ID); err != nil {
			return err
		}
		if err := relocate(txn, node, repository.JoinPath(target.Path, newName)); err != nil {
			return err
		}
		moved = node
		return nil
	})
	return moved, err
}

// relocate rewrites the path of node and all its descendants.
func relocate(txn Txn, node *repository.Node, newPath string) error {
	node.Path = newPath
	if err := txn.PutNode(node); err != nil {
		return err
	}
	ids, err := txn.ChildIDs(node.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		child, err := txn.GetNode(id)
		if err != nil {
			return err
		}
		if err := relocate(txn, child, repository.JoinPath(newPath, child.Name)); err != nil {
			return err
		}
	}
	return nil
}

func isSelfOrDescendant(candidate, ancestor string) bool {
	if candidate == ancestor {
		return true
	}
	if ancestor == "/" {
		return true
	}
	return len(candidate) > len(ancestor) && candidate[:len(ancestor)] == ancestor && candidate[len(ancestor)] == '/'
}

func (s *Session) Copy(ctx context.Context, ref repository.Ref, newParentRef repository.Ref, newName string) (*repository.Node, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	if err := repository.ValidateName(newName); err != nil {
		return nil, err
	}
	var copied *repository.Node
	err := s.repo.store.Update(ctx, func(txn Txn) error {
		node, err := resolve(txn, ref)
		if err != nil {
			return err
		}
		target, err := resolve(txn, newParentRef)
		if err != nil {
			return err
		}
		if !target.IsFolder() {
			return repository.NewStoreError(repository.ErrNotDirectory, "target is not a container", target.Path)
		}
		if isSelfOrDescendant(target.Path, node.Path) {
			return repository.NewStoreError(repository.ErrInvalidArgument, "cannot copy a node under itself", target.Path)
		}
		if err := s.require(txn, node, repository.PermRead); err != nil {
			return err
		}
		if err := s.require(txn, target, repository.PermWrite); err != nil {
			return err
		}
		if _, exists, err := txn.ChildID(target.ID, newName); err != nil {
			return err
		} else if exists {
			return repository.NewStoreError(repository.ErrAlreadyExists, "name already used",
				repository.JoinPath(target.Path, newName))
		}

		copied, err = s.copyTree(txn, node, target, newName)
		return err
	})
	return copied, err
}

func (s *Session) copyTree(txn Txn, node, parent *repository.Node, name string) (*repository.Node, error) {
	now := s.repo.now()
	c := node.Clone()
	c.ID = uuid.NewString()
	c.ParentID = parent.ID
	c.Name = name
	c.Path = repository.JoinPath(parent.Path, name)
	c.Lock = nil
	c.Created = now
	c.Modified = now

	if err := txn.PutNode(c); err != nil {
		return nil, err
	}
	if err := txn.LinkChild(parent.ID, name, c.ID); err != nil {
		return nil, err
	}

	ids, err := txn.ChildIDs(node.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		child, err := txn.GetNode(id)
		if err != nil {
			return nil, err
		}
		if _, err := s.copyTree(txn, child, c, child.Name); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *Session) SetLifecycleState(ctx context.Context, ref repository.Ref, state repository.LifecycleState) (*repository.Node, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	perm := repository.PermWrite
	if state == repository.StateDeleted {
		perm = repository.PermRemove
	}
	var updated *repository.Node
	err := s.repo.store.Update(ctx, func(txn Txn) error {
		node, err := resolve(txn, ref)
		if err != nil {
			return err
		}
		if err := s.require(txn, node, perm); err != nil {
			return err
		}
		if err := s.requireUnlocked(node); err != nil {
			return err
		}
		node.State = state
		node.Modified = s.repo.now()
		if err := txn.PutNode(node); err != nil {
			return err
		}
		updated = node
		return nil
	})
	return updated, err
}

func (s *Session) SetLock(ctx context.Context, ref repository.Ref) (*repository.Lock, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	var lock *repository.Lock
	err := s.repo.store.Update(ctx, func(txn Txn) error {
		node, err := resolve(txn, ref)
		if err != nil {
			return err
		}
		if err := s.require(txn, node, repository.PermWriteProperties); err != nil {
			return err
		}
		if err := s.requireUnlocked(node); err != nil {
			return err
		}
		if node.Lock == nil {
			node.Lock = &repository.Lock{Owner: s.principal, Created: s.repo.now()}
			if err := txn.PutNode(node); err != nil {
				return err
			}
		}
		l := *node.Lock
		lock = &l
		return nil
	})
	return lock, err
}

func (s *Session) RemoveLock(ctx context.Context, ref repository.Ref) error {
	if err := s.enter(ctx); err != nil {
		return err
	}
	return s.repo.store.Update(ctx, func(txn Txn) error {
		node, err := resolve(txn, ref)
		if err != nil {
			return err
		}
		if node.Lock == nil {
			return nil
		}
		if err := s.require(txn, node, repository.PermWriteProperties); err != nil {
			return err
		}
		if err := s.requireUnlocked(node); err != nil {
			return err
		}
		node.Lock = nil
		return txn.PutNode(node)
	})
}

func (s *Session) GetLock(ctx context.Context, ref repository.Ref) (*repository.Lock, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	var lock *repository.Lock
	err := s.repo.store.View(ctx, func(txn Txn) error {
		node, err := resolve(txn, ref)
		if err != nil {
			return err
		}
		if node.Lock != nil {
			l := *node.Lock
			lock = &l
		}
		return nil
	})
	return lock, err
}

func (s *Session) HasPermission(ctx context.Context, ref repository.Ref, perm repository.Permission) (bool, error) {
	if err := s.enter(ctx); err != nil {
		return false, err
	}
	var ok bool
	err := s.repo.store.View(ctx, func(txn Txn) error {
		node, err := resolve(txn, ref)
		if err != nil {
			return err
		}
		ok, err = allowed(txn, node, s.principal, perm)
		return err
	})
	return ok, err
}

// normalizePayload fills the derived fields of a payload.
func normalizePayload(p *repository.Payload) *repository.Payload {
	if p == nil {
		return nil
	}
	p.Length = int64(len(p.Data))
	if p.MediaType == "" {
		p.MediaType = mediatype.Detect(p.Filename, p.Data)
	}
	return p
}
