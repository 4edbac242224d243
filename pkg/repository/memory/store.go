package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/marmos91/dittodav/pkg/repository/internal/tree"
)

// nodeStore is the map-backed tree.Store of the in-memory repository.
//
// Update transactions hold the write lock for their whole duration and keep
// an undo log, so a failing transaction leaves the maps untouched.
type nodeStore struct {
	mu sync.RWMutex

	rootID string
	nodes  map[string]*repository.Node

	// children keeps child IDs in insertion order; names indexes them
	children map[string][]string
	names    map[string]map[string]string

	acls map[string][]repository.ACE
}

func newNodeStore() *nodeStore {
	return &nodeStore{
		nodes:    make(map[string]*repository.Node),
		children: make(map[string][]string),
		names:    make(map[string]map[string]string),
		acls:     make(map[string][]repository.ACE),
	}
}

func (s *nodeStore) View(_ context.Context, fn func(txn tree.Txn) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTxn{store: s})
}

func (s *nodeStore) Update(_ context.Context, fn func(txn tree.Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := &memTxn{store: s, writable: true}
	if err := fn(txn); err != nil {
		txn.rollback()
		return err
	}
	return nil
}

// memTxn implements tree.Txn directly over the store maps.
type memTxn struct {
	store    *nodeStore
	writable bool
	undo     []func()
}

func (t *memTxn) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTxn) checkWritable() error {
	if !t.writable {
		return repository.NewStoreError(repository.ErrInvalidArgument, "read-only transaction", "")
	}
	return nil
}

func (t *memTxn) RootID() (string, error) {
	return t.store.rootID, nil
}

func (t *memTxn) SetRootID(id string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev := t.store.rootID
	t.undo = append(t.undo, func() { t.store.rootID = prev })
	t.store.rootID = id
	return nil
}

func (t *memTxn) GetNode(id string) (*repository.Node, error) {
	n, ok := t.store.nodes[id]
	if !ok {
		return nil, repository.NewStoreError(repository.ErrNotFound, "node not found", "id:"+id)
	}
	return n.Clone(), nil
}

func (t *memTxn) PutNode(node *repository.Node) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev, existed := t.store.nodes[node.ID]
	t.undo = append(t.undo, func() {
		if existed {
			t.store.nodes[node.ID] = prev
		} else {
			delete(t.store.nodes, node.ID)
		}
	})
	t.store.nodes[node.ID] = node.Clone()
	return nil
}

func (t *memTxn) ChildIDs(parentID string) ([]string, error) {
	return slices.Clone(t.store.children[parentID]), nil
}

func (t *memTxn) ChildID(parentID, name string) (string, bool, error) {
	id, ok := t.store.names[parentID][name]
	return id, ok, nil
}

func (t *memTxn) LinkChild(parentID, name, childID string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if _, exists := t.store.names[parentID][name]; exists {
		return repository.NewStoreError(repository.ErrAlreadyExists, "name already used", name)
	}

	prevChildren := t.store.children[parentID]
	t.undo = append(t.undo, func() {
		t.store.children[parentID] = prevChildren
		delete(t.store.names[parentID], name)
	})

	if t.store.names[parentID] == nil {
		t.store.names[parentID] = make(map[string]string)
	}
	t.store.names[parentID][name] = childID
	// Clone so that the undo closure keeps the previous backing array intact
	t.store.children[parentID] = append(slices.Clone(prevChildren), childID)
	return nil
}

func (t *memTxn) UnlinkChild(parentID, name string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	childID, exists := t.store.names[parentID][name]
	if !exists {
		return repository.NewStoreError(repository.ErrNotFound, "child not found", name)
	}

	prevChildren := t.store.children[parentID]
	t.undo = append(t.undo, func() {
		t.store.children[parentID] = prevChildren
		t.store.names[parentID][name] = childID
	})

	delete(t.store.names[parentID], name)
	t.store.children[parentID] = slices.DeleteFunc(slices.Clone(prevChildren), func(id string) bool {
		return id == childID
	})
	return nil
}

func (t *memTxn) GetACL(id string) ([]repository.ACE, error) {
	return slices.Clone(t.store.acls[id]), nil
}

func (t *memTxn) PutACL(id string, aces []repository.ACE) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev, existed := t.store.acls[id]
	t.undo = append(t.undo, func() {
		if existed {
			t.store.acls[id] = prev
		} else {
			delete(t.store.acls, id)
		}
	})
	t.store.acls[id] = slices.Clone(aces)
	return nil
}
