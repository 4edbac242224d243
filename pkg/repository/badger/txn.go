package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/marmos91/dittodav/pkg/content"
	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/marmos91/dittodav/pkg/repository/internal/tree"
)

// nodeStore adapts a BadgerDB handle and a content store to tree.Store.
type nodeStore struct {
	db       *badger.DB
	payloads content.Store
}

func (s *nodeStore) View(ctx context.Context, fn func(txn tree.Txn) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTxn{ctx: ctx, txn: txn, payloads: s.payloads})
	})
}

// Update retries on badger.ErrConflict, which signals that a concurrent
// transaction committed a key this one read.
func (s *nodeStore) Update(ctx context.Context, fn func(txn tree.Txn) error) error {
	const maxRetries = 3

	var err error
	for range maxRetries {
		err = s.db.Update(func(txn *badger.Txn) error {
			return fn(&badgerTxn{ctx: ctx, txn: txn, payloads: s.payloads})
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// badgerTxn implements tree.Txn over one badger transaction.
//
// Payload bytes are written to the content store as soon as PutNode runs;
// they are not rolled back if the badger transaction later fails. The
// orphaned payload is overwritten by the next successful save of the node.
type badgerTxn struct {
	ctx      context.Context
	txn      *badger.Txn
	payloads content.Store
}

func (t *badgerTxn) get(key []byte) ([]byte, bool, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return val, true, nil
}

func (t *badgerTxn) set(key, val []byte) error {
	if err := t.txn.Set(key, val); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

func (t *badgerTxn) RootID() (string, error) {
	val, _, err := t.get([]byte(keyRoot))
	return string(val), err
}

func (t *badgerTxn) SetRootID(id string) error {
	return t.set([]byte(keyRoot), []byte(id))
}

func (t *badgerTxn) GetNode(id string) (*repository.Node, error) {
	val, ok, err := t.get(keyNode(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.NewStoreError(repository.ErrNotFound, "node not found", "id:"+id)
	}
	node, err := decodeNode(val)
	if err != nil {
		return nil, err
	}

	if node.Payload != nil {
		data, err := content.ReadAll(t.ctx, t.payloads, content.ID(id))
		if err != nil {
			if errors.Is(err, content.ErrContentNotFound) {
				return nil, repository.NewStoreError(repository.ErrIOError, "payload missing", node.Path)
			}
			return nil, err
		}
		node.Payload.Data = data
	}
	return node, nil
}

func (t *badgerTxn) PutNode(node *repository.Node) error {
	val, err := encodeNode(node)
	if err != nil {
		return err
	}
	if err := t.set(keyNode(node.ID), val); err != nil {
		return err
	}
	return t.syncPayload(node)
}

// syncPayload mirrors the node payload into the content store when its
// digest changed.
func (t *badgerTxn) syncPayload(node *repository.Node) error {
	id := content.ID(node.ID)
	stored, _, err := t.get(keyDigest(node.ID))
	if err != nil {
		return err
	}

	if node.Payload == nil {
		if stored == nil {
			return nil
		}
		if err := t.payloads.Delete(t.ctx, id); err != nil {
			return err
		}
		return t.txn.Delete(keyDigest(node.ID))
	}

	digest := payloadDigest(node.Payload.Data)
	if bytes.Equal(stored, digest) {
		return nil
	}
	if err := t.payloads.WriteContent(t.ctx, id, node.Payload.Data); err != nil {
		return err
	}
	return t.set(keyDigest(node.ID), digest)
}

func (t *badgerTxn) ChildIDs(parentID string) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = keyChildPrefix(parentID)

	it := t.txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Rewind(); it.Valid(); it.Next() {
		if err := t.ctx.Err(); err != nil {
			return nil, err
		}
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read child entry: %w", err)
		}
		ids = append(ids, string(val))
	}
	return ids, nil
}

func (t *badgerTxn) ChildID(parentID, name string) (string, bool, error) {
	val, ok, err := t.get(keyChild(parentID, name))
	return string(val), ok, err
}

func (t *badgerTxn) LinkChild(parentID, name, childID string) error {
	if _, exists, err := t.get(keyChild(parentID, name)); err != nil {
		return err
	} else if exists {
		return repository.NewStoreError(repository.ErrAlreadyExists, "name already used", name)
	}
	return t.set(keyChild(parentID, name), []byte(childID))
}

func (t *badgerTxn) UnlinkChild(parentID, name string) error {
	if err := t.txn.Delete(keyChild(parentID, name)); err != nil {
		return fmt.Errorf("failed to unlink %s: %w", name, err)
	}
	return nil
}

func (t *badgerTxn) GetACL(id string) ([]repository.ACE, error) {
	val, ok, err := t.get(keyACL(id))
	if err != nil || !ok {
		return nil, err
	}
	return decodeACL(val)
}

func (t *badgerTxn) PutACL(id string, aces []repository.ACE) error {
	val, err := encodeACL(aces)
	if err != nil {
		return err
	}
	return t.set(keyACL(id), val)
}
