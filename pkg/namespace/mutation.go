package namespace

import (
	"context"
	"time"

	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/pkg/mediatype"
	"github.com/marmos91/dittodav/pkg/repository"
)

// CreateFolder creates a container named name under the container at
// parentLocation.
//
// The folder is a Workspace when the parent is a WorkspaceRoot, a Folder
// otherwise, and is titled name. A trash occupant of name is renamed aside
// first; a live one fails the call with ErrConflictOnReclaim.
//
// Errors:
//   - ErrNotFound: parentLocation does not resolve
//   - ErrNotFolder: the parent is a leaf
//   - ErrConflictOnReclaim: a live node already holds name
func (b *Backend) CreateFolder(ctx context.Context, parentLocation, name string) (folder *repository.Node, err error) {
	const op = "CreateFolder"
	defer b.observe(op, time.Now(), &err)

	parent, err := b.prepareCreate(ctx, op, parentLocation, name)
	if err != nil {
		return nil, err
	}

	live, _, err := b.reclaim(ctx, parent, name)
	if err != nil {
		return nil, wrapError(op, repository.JoinPath(parent.Path, name), err)
	}
	if live != nil {
		return nil, newError(ErrConflictOnReclaim, op, live.Path)
	}

	docType := repository.TypeFolder
	if parent.Type == repository.TypeWorkspaceRoot {
		docType = repository.TypeWorkspace
	}

	folder, err = b.session.Create(ctx, parent.Ref(), repository.NodeSpec{
		Name:  name,
		Type:  docType,
		Title: name,
	})
	if err != nil {
		return nil, wrapError(op, repository.JoinPath(parent.Path, name), err)
	}

	b.cacheCreated(b.ParseLocation(parentLocation), folder)
	logger.Info("Created %s %s", docType, folder.Path)
	return folder, nil
}

// CreateFile creates a leaf named name carrying payload under the container
// at parentLocation.
//
// The document type is picked by the file importer from the payload media
// type, or is always File when the backend is configured so. A trash
// occupant of name is renamed aside first; a live one fails the call with
// ErrConflictOnReclaim. Use PutFile to replace a live leaf instead.
func (b *Backend) CreateFile(ctx context.Context, parentLocation, name string, payload *repository.Payload) (file *repository.Node, err error) {
	const op = "CreateFile"
	defer b.observe(op, time.Now(), &err)
	return b.createFile(ctx, op, parentLocation, name, payload, false)
}

// PutFile is CreateFile with overwrite semantics: when a live leaf already
// holds name, its payload is replaced and its identity kept. A live
// container still fails with ErrConflictOnReclaim.
func (b *Backend) PutFile(ctx context.Context, parentLocation, name string, payload *repository.Payload) (file *repository.Node, err error) {
	const op = "PutFile"
	defer b.observe(op, time.Now(), &err)
	return b.createFile(ctx, op, parentLocation, name, payload, true)
}

// CreateEmptyFile creates a leaf with an empty application/octet-stream
// payload.
func (b *Backend) CreateEmptyFile(ctx context.Context, parentLocation, name string) (*repository.Node, error) {
	return b.CreateFile(ctx, parentLocation, name, repository.NewPayload(name, mediatype.Default, []byte{}))
}

func (b *Backend) createFile(ctx context.Context, op, parentLocation, name string, payload *repository.Payload, overwrite bool) (*repository.Node, error) {
	parent, err := b.prepareCreate(ctx, op, parentLocation, name)
	if err != nil {
		return nil, err
	}
	target := repository.JoinPath(parent.Path, name)

	live, _, err := b.reclaim(ctx, parent, name)
	if err != nil {
		return nil, wrapError(op, target, err)
	}
	if live != nil && (!overwrite || live.IsFolder()) {
		return nil, newError(ErrConflictOnReclaim, op, live.Path)
	}

	if payload != nil {
		payload = payload.Clone()
		if payload.Filename == "" {
			payload.Filename = name
		}
	}

	var file *repository.Node
	switch {
	case !b.cfg.AlwaysCreateFile:
		file, err = b.files.CreateFromPayload(ctx, b.session, payload, parent.Path, overwrite, name)
	case live != nil:
		if payload == nil {
			payload = repository.NewPayload(name, "", nil)
		}
		live.Payload = payload
		file, err = b.session.Save(ctx, live)
	default:
		file, err = b.session.Create(ctx, parent.Ref(), repository.NodeSpec{
			Name:    name,
			Type:    repository.TypeFile,
			Title:   name,
			Payload: payload,
		})
	}
	if err != nil {
		return nil, wrapError(op, target, err)
	}

	if live != nil {
		// aliases cached under the old payload filename hold the old payload
		b.paths().removeNode(live.ID)
	}
	b.cacheCreated(b.ParseLocation(parentLocation), file)
	if live != nil {
		logger.Info("Replaced payload of %s", file.Path)
	} else {
		logger.Info("Created %s %s", file.Type, file.Path)
	}
	return file, nil
}

// UpdateDocument replaces the payload of an existing leaf through the file
// importer, which keeps the node's identity.
func (b *Backend) UpdateDocument(ctx context.Context, node *repository.Node, name string, payload *repository.Payload) (updated *repository.Node, err error) {
	const op = "UpdateDocument"
	defer b.observe(op, time.Now(), &err)

	parentPath, _ := repository.SplitPath(node.Path)
	updated, err = b.files.CreateFromPayload(ctx, b.session, payload, parentPath, true, name)
	if err != nil {
		return nil, wrapError(op, node.Path, err)
	}

	cache := b.paths()
	cache.removeNode(node.ID)
	cache.put(updated.Path, updated)
	logger.Info("Updated %s", updated.Path)
	return updated, nil
}

// RemoveItem soft-deletes the node resolved from location. The node stays
// in the tree as a trash occupant.
func (b *Backend) RemoveItem(ctx context.Context, location string) (err error) {
	const op = "Remove"
	defer b.observe(op, time.Now(), &err)

	node, err := b.ResolveLocation(ctx, location)
	if err != nil {
		return err
	}
	if node == nil {
		return newError(ErrNotFound, op, location)
	}
	return b.remove(ctx, op, node)
}

// RemoveRef soft-deletes the node at ref.
func (b *Backend) RemoveRef(ctx context.Context, ref repository.Ref) (err error) {
	const op = "Remove"
	defer b.observe(op, time.Now(), &err)

	node, err := b.session.Get(ctx, ref)
	if err != nil {
		return wrapError(op, ref.String(), err)
	}
	if node.IsDeleted() {
		return newError(ErrNotFound, op, ref.String())
	}
	return b.remove(ctx, op, node)
}

func (b *Backend) remove(ctx context.Context, op string, node *repository.Node) error {
	if err := b.trash.Trash(ctx, b.session, []*repository.Node{node}); err != nil {
		return wrapError(op, node.Path, err)
	}

	cache := b.paths()
	cache.removeTree(node.Path)
	cache.removeNode(node.ID)
	logger.Info("Removed %s", node.Path)
	return nil
}

// MoveItem moves source under targetParent as newName; an empty newName
// keeps the source name.
//
// A trash occupant of the target name is renamed aside first; a live one
// (other than source itself) fails the call with ErrConflictOnReclaim. To
// move over a live node, remove it first: it then becomes a trash occupant.
//
// Afterwards the target path resolves from the cache to the moved node,
// and the old path and its descendants are dropped from the cache.
func (b *Backend) MoveItem(ctx context.Context, source *repository.Node, targetParent repository.Ref, newName string) (moved *repository.Node, err error) {
	const op = "Move"
	defer b.observe(op, time.Now(), &err)
	return b.moveItem(ctx, op, source, targetParent, newName)
}

func (b *Backend) moveItem(ctx context.Context, op string, source *repository.Node, targetParent repository.Ref, newName string) (*repository.Node, error) {
	if newName == "" {
		newName = source.Name
	}

	target, err := b.targetContainer(ctx, op, targetParent, newName)
	if err != nil {
		return nil, err
	}
	newPath := repository.JoinPath(target.Path, newName)

	live, _, err := b.reclaim(ctx, target, newName)
	if err != nil {
		return nil, wrapError(op, newPath, err)
	}
	if live != nil && live.ID != source.ID {
		return nil, newError(ErrConflictOnReclaim, op, live.Path)
	}

	moved, err := b.session.Move(ctx, source.Ref(), target.Ref(), newName)
	if err != nil {
		return nil, wrapError(op, source.Path, err)
	}

	cache := b.paths()
	cache.removeTree(source.Path)
	cache.removeNode(source.ID)
	cache.removeTree(newPath)
	cache.put(newPath, moved)

	logger.Info("Moved %s to %s", source.Path, moved.Path)
	return moved, nil
}

// CopyItem copies source under targetParent as newName; an empty newName
// keeps the source name. The source's cache entries are left untouched.
func (b *Backend) CopyItem(ctx context.Context, source *repository.Node, targetParent repository.Ref, newName string) (copied *repository.Node, err error) {
	const op = "Copy"
	defer b.observe(op, time.Now(), &err)

	if newName == "" {
		newName = source.Name
	}

	target, err := b.targetContainer(ctx, op, targetParent, newName)
	if err != nil {
		return nil, err
	}
	newPath := repository.JoinPath(target.Path, newName)

	live, _, err := b.reclaim(ctx, target, newName)
	if err != nil {
		return nil, wrapError(op, newPath, err)
	}
	if live != nil {
		return nil, newError(ErrConflictOnReclaim, op, live.Path)
	}

	copied, err = b.session.Copy(ctx, source.Ref(), target.Ref(), newName)
	if err != nil {
		return nil, wrapError(op, source.Path, err)
	}

	cache := b.paths()
	cache.removeTree(newPath)
	cache.put(newPath, copied)

	logger.Info("Copied %s to %s", source.Path, copied.Path)
	return copied, nil
}

// RenameItem gives source a new name.
//
// Containers, and leaves without a payload, are moved to newName under
// their parent and retitled. A leaf with a payload is renamed in place: its
// title and payload filename change and its media type is recomputed from
// the new name, but its path does not.
func (b *Backend) RenameItem(ctx context.Context, source *repository.Node, newName string) (renamed *repository.Node, err error) {
	const op = "Rename"
	defer b.observe(op, time.Now(), &err)

	if err := repository.ValidateName(newName); err != nil {
		return nil, wrapError(op, source.Path, err)
	}

	if source.IsFolder() || source.Payload == nil {
		moved, err := b.moveItem(ctx, op, source, repository.IDRef(source.ParentID), newName)
		if err != nil {
			return nil, err
		}
		moved.Title = newName
		renamed, err = b.session.Save(ctx, moved)
		if err != nil {
			return nil, wrapError(op, moved.Path, err)
		}
		b.paths().put(renamed.Path, renamed)
		return renamed, nil
	}

	node := source.Clone()
	node.Title = newName
	node.Payload.Filename = newName
	node.Payload.MediaType = ""

	renamed, err = b.session.Save(ctx, node)
	if err != nil {
		return nil, wrapError(op, source.Path, err)
	}

	// the new filename may have been cached as absent under its sibling path
	parentPath, _ := repository.SplitPath(source.Path)
	cache := b.paths()
	cache.removeNode(source.ID)
	cache.remove(repository.JoinPath(parentPath, newName))
	cache.put(renamed.Path, renamed)

	logger.Info("Renamed %s in place to %q (%s)", renamed.Path, newName, renamed.Payload.MediaType)
	return renamed, nil
}

// prepareCreate validates name and resolves the container a create targets.
func (b *Backend) prepareCreate(ctx context.Context, op, parentLocation, name string) (*repository.Node, error) {
	if err := repository.ValidateName(name); err != nil {
		return nil, wrapError(op, parentLocation, err)
	}

	parent, err := b.ResolveLocation(ctx, parentLocation)
	if err != nil {
		return nil, wrapError(op, parentLocation, err)
	}
	if parent == nil {
		return nil, newError(ErrNotFound, op, parentLocation)
	}
	if !parent.IsFolder() {
		return nil, newError(ErrNotFolder, op, parentLocation)
	}
	return parent, nil
}

// targetContainer validates name and loads the container a move or copy
// targets.
func (b *Backend) targetContainer(ctx context.Context, op string, ref repository.Ref, name string) (*repository.Node, error) {
	if err := repository.ValidateName(name); err != nil {
		return nil, wrapError(op, ref.String(), err)
	}

	target, err := b.session.Get(ctx, ref)
	if err != nil {
		return nil, wrapError(op, ref.String(), err)
	}
	if target.IsDeleted() {
		return nil, newError(ErrNotFound, op, target.Path)
	}
	if !target.IsFolder() {
		return nil, newError(ErrNotFolder, op, target.Path)
	}
	return target, nil
}

// cacheCreated caches a new node under the canonical path it was created
// at, and under its repository path when the parent was resolved through a
// different spelling.
func (b *Backend) cacheCreated(parentKey string, node *repository.Node) {
	cache := b.paths()
	key := repository.JoinPath(parentKey, node.Name)
	cache.put(key, node)
	if node.Path != key {
		cache.put(node.Path, node)
	}
}
