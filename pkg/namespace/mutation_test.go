package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittodav/pkg/mediatype"
	"github.com/marmos91/dittodav/pkg/repository"
)

// ============================================================================
// CreateFolder
// ============================================================================

func TestCreateFolder_WorkspaceRule(t *testing.T) {
	f := newFixture(t)

	ws, err := f.backend.CreateFolder(f.ctx, loc(), "ws")
	require.NoError(t, err)
	assert.Equal(t, repository.TypeWorkspace, ws.Type)
	assert.Equal(t, "ws", ws.Title)
	assert.Equal(t, rpath("ws"), ws.Path)

	sub, err := f.backend.CreateFolder(f.ctx, loc("ws"), "sub")
	require.NoError(t, err)
	assert.Equal(t, repository.TypeFolder, sub.Type)
}

func TestCreateFolder_CachesNewPath(t *testing.T) {
	f := newFixture(t)

	created, err := f.backend.CreateFolder(f.ctx, loc(), "ws")
	require.NoError(t, err)

	calls := f.session.calls.Load()
	node, err := f.backend.ResolveLocation(f.ctx, loc("ws"))
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, created.ID, node.ID)
	assert.Equal(t, calls, f.session.calls.Load())
}

func TestCreateFolder_ReplacesCachedAbsence(t *testing.T) {
	f := newFixture(t)

	node, err := f.backend.ResolveLocation(f.ctx, loc("ws"))
	require.NoError(t, err)
	require.Nil(t, node)

	_, err = f.backend.CreateFolder(f.ctx, loc(), "ws")
	require.NoError(t, err)

	node, err = f.backend.ResolveLocation(f.ctx, loc("ws"))
	require.NoError(t, err)
	assert.NotNil(t, node)
}

func TestCreateFolder_ReclaimsTrashOccupant(t *testing.T) {
	f := newFixture(t)

	first, err := f.backend.CreateFolder(f.ctx, loc(), "ws")
	require.NoError(t, err)
	require.NoError(t, f.backend.RemoveItem(f.ctx, loc("ws")))

	second, err := f.backend.CreateFolder(f.ctx, loc(), "ws")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	aside := f.get(t, rpath("ws.1700000000000"))
	assert.Equal(t, first.ID, aside.ID)
	assert.True(t, aside.IsDeleted())
	assert.ElementsMatch(t, []string{"ws", "ws.1700000000000"}, f.childNames(t, testRootPath))
}

func TestCreateFolder_LiveOccupantConflicts(t *testing.T) {
	f := newFixture(t)

	existing, err := f.backend.CreateFolder(f.ctx, loc(), "ws")
	require.NoError(t, err)

	_, err = f.backend.CreateFolder(f.ctx, loc(), "ws")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrConflictOnReclaim))

	after := f.get(t, rpath("ws"))
	assert.Equal(t, existing.ID, after.ID)
	assert.Equal(t, existing.Title, after.Title)
	assert.False(t, after.IsDeleted())
	assert.Equal(t, 1, f.metrics.failures["CreateFolder"])
}

func TestCreateFolder_Errors(t *testing.T) {
	f := newFixture(t)
	f.mustFile(t, testRootPath, "a.txt", "a.txt", "x")

	_, err := f.backend.CreateFolder(f.ctx, loc("a.txt"), "sub")
	assert.True(t, IsCode(err, ErrNotFolder), "got %v", err)

	_, err = f.backend.CreateFolder(f.ctx, loc("missing"), "sub")
	assert.True(t, IsNotFound(err), "got %v", err)

	_, err = f.backend.CreateFolder(f.ctx, loc(), "a/b")
	assert.True(t, IsCode(err, ErrRepositoryFailure), "got %v", err)
}

func TestCreateFolder_PermissionDenied(t *testing.T) {
	f := newFixture(t)
	f.grant(t,
		repository.ACE{Principal: "admin", Permission: repository.PermEverything, Granted: true},
		repository.ACE{Principal: repository.Everyone, Permission: repository.PermRead, Granted: true},
	)

	_, err := f.backend.CreateFolder(f.ctx, loc(), "ws")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrPermissionDenied), "got %v", err)
}

// ============================================================================
// ReclaimPath
// ============================================================================

func TestReclaimPath(t *testing.T) {
	f := newFixture(t)
	root := f.get(t, testRootPath)
	live := f.mustFolder(t, testRootPath, "live")
	dead := f.mustFolder(t, testRootPath, "dead")
	f.mustTrash(t, dead)

	displaced, err := f.backend.ReclaimPath(f.ctx, root, "empty")
	require.NoError(t, err)
	assert.False(t, displaced)

	displaced, err = f.backend.ReclaimPath(f.ctx, root, "live")
	require.NoError(t, err)
	assert.False(t, displaced)
	assert.Equal(t, live.ID, f.get(t, rpath("live")).ID)

	displaced, err = f.backend.ReclaimPath(f.ctx, root, "dead")
	require.NoError(t, err)
	assert.True(t, displaced)
	assert.Equal(t, dead.ID, f.get(t, rpath("dead.1700000000000")).ID)

	exists, err := f.admin.Exists(f.ctx, repository.PathRef(rpath("dead")))
	require.NoError(t, err)
	assert.False(t, exists)
}

// ============================================================================
// CreateFile / PutFile / UpdateDocument
// ============================================================================

func TestCreateFile_TypeFromMediaType(t *testing.T) {
	f := newFixture(t)
	f.mustFolder(t, testRootPath, "ws")

	note, err := f.backend.CreateFile(f.ctx, loc("ws"), "notes.txt", repository.NewPayload("", "", []byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, repository.TypeNote, note.Type)
	assert.Equal(t, "notes.txt", note.Title)
	require.NotNil(t, note.Payload)
	assert.Equal(t, "notes.txt", note.Payload.Filename)
	assert.Equal(t, "text/plain", note.Payload.MediaType)

	pic, err := f.backend.CreateFile(f.ctx, loc("ws"), "logo.png", repository.NewPayload("logo.png", "", []byte{0x89}))
	require.NoError(t, err)
	assert.Equal(t, repository.TypePicture, pic.Type)
}

func TestCreateFile_AlwaysCreateFile(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.AlwaysCreateFile = true })
	f.mustFolder(t, testRootPath, "ws")

	file, err := f.backend.CreateFile(f.ctx, loc("ws"), "notes.txt", repository.NewPayload("", "", []byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, repository.TypeFile, file.Type)
	require.NotNil(t, file.Payload)
	assert.Equal(t, []byte("hello"), file.Payload.Data)

	bare, err := f.backend.CreateFile(f.ctx, loc("ws"), "bare", nil)
	require.NoError(t, err)
	assert.Nil(t, bare.Payload)
}

func TestCreateFile_LiveOccupantConflicts(t *testing.T) {
	f := newFixture(t)
	f.mustFolder(t, testRootPath, "ws")
	original, err := f.backend.CreateFile(f.ctx, loc("ws"), "a.txt", repository.NewPayload("", "", []byte("v1")))
	require.NoError(t, err)

	_, err = f.backend.CreateFile(f.ctx, loc("ws"), "a.txt", repository.NewPayload("", "", []byte("v2")))
	assert.True(t, IsCode(err, ErrConflictOnReclaim), "got %v", err)
	assert.Equal(t, []byte("v1"), f.get(t, original.Path).Payload.Data)
}

func TestPutFile_Overwrites(t *testing.T) {
	for _, always := range []bool{false, true} {
		t.Run(map[bool]string{false: "file importer", true: "always create file"}[always], func(t *testing.T) {
			f := newFixture(t, func(c *Config) { c.AlwaysCreateFile = always })
			f.mustFolder(t, testRootPath, "ws")
			original, err := f.backend.CreateFile(f.ctx, loc("ws"), "a.txt", repository.NewPayload("", "", []byte("v1")))
			require.NoError(t, err)

			updated, err := f.backend.PutFile(f.ctx, loc("ws"), "a.txt", repository.NewPayload("", "", []byte("v2")))
			require.NoError(t, err)
			assert.Equal(t, original.ID, updated.ID)
			assert.Equal(t, []byte("v2"), f.get(t, original.Path).Payload.Data)

			node, err := f.backend.ResolveLocation(f.ctx, loc("ws", "a.txt"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), node.Payload.Data)
		})
	}
}

func TestPutFile_DropsFilenameAliases(t *testing.T) {
	for _, always := range []bool{false, true} {
		t.Run(map[bool]string{false: "file importer", true: "always create file"}[always], func(t *testing.T) {
			f := newFixture(t, func(c *Config) { c.AlwaysCreateFile = always })
			ws := f.mustFolder(t, testRootPath, "ws")
			original := f.mustFile(t, ws.Path, "cafe.txt", "café.txt", "v1")

			// cache the node under its payload filename
			alias, err := f.backend.ResolveLocation(f.ctx, loc("ws", "café.txt"))
			require.NoError(t, err)
			require.NotNil(t, alias)
			require.Equal(t, original.ID, alias.ID)

			_, err = f.backend.PutFile(f.ctx, loc("ws"), "cafe.txt", repository.NewPayload("cafe.txt", "", []byte("v2")))
			require.NoError(t, err)

			_, _, fresh := f.open(t, "alice", func(c *Config) { c.AlwaysCreateFile = always })
			want, err := fresh.ResolveLocation(f.ctx, loc("ws", "café.txt"))
			require.NoError(t, err)

			got, err := f.backend.ResolveLocation(f.ctx, loc("ws", "café.txt"))
			require.NoError(t, err)
			if want == nil {
				assert.Nil(t, got, "old filename must not resolve after the payload changed")
			} else {
				require.NotNil(t, got)
				assert.Equal(t, want.Payload.Data, got.Payload.Data)
			}

			node, err := f.backend.ResolveLocation(f.ctx, loc("ws", "cafe.txt"))
			require.NoError(t, err)
			require.NotNil(t, node)
			assert.Equal(t, []byte("v2"), node.Payload.Data)
		})
	}
}

func TestPutFile_OverFolderConflicts(t *testing.T) {
	f := newFixture(t)
	f.mustFolder(t, testRootPath, "ws")

	_, err := f.backend.PutFile(f.ctx, loc(), "ws", repository.NewPayload("", "", []byte("x")))
	assert.True(t, IsCode(err, ErrConflictOnReclaim), "got %v", err)
}

func TestCreateFile_ReclaimsTrashOccupant(t *testing.T) {
	f := newFixture(t)
	f.mustFolder(t, testRootPath, "ws")
	first, err := f.backend.CreateFile(f.ctx, loc("ws"), "a.txt", repository.NewPayload("", "", []byte("v1")))
	require.NoError(t, err)
	require.NoError(t, f.backend.RemoveItem(f.ctx, loc("ws", "a.txt")))

	second, err := f.backend.CreateFile(f.ctx, loc("ws"), "a.txt", repository.NewPayload("", "", []byte("v2")))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.ElementsMatch(t, []string{"a.txt.1700000000000", "a.txt"}, f.childNames(t, rpath("ws")))
}

func TestCreateFile_UnderLeaf(t *testing.T) {
	f := newFixture(t)
	f.mustFile(t, testRootPath, "a.txt", "a.txt", "x")

	_, err := f.backend.CreateFile(f.ctx, loc("a.txt"), "b.txt", nil)
	assert.True(t, IsCode(err, ErrNotFolder), "got %v", err)
}

func TestCreateEmptyFile(t *testing.T) {
	f := newFixture(t)
	f.mustFolder(t, testRootPath, "ws")

	file, err := f.backend.CreateEmptyFile(f.ctx, loc("ws"), "blob")
	require.NoError(t, err)
	require.NotNil(t, file.Payload)
	assert.Equal(t, mediatype.Default, file.Payload.MediaType)
	assert.Zero(t, file.Payload.Length)
	assert.Equal(t, repository.TypeFile, file.Type)
}

func TestUpdateDocument(t *testing.T) {
	f := newFixture(t)
	ws := f.mustFolder(t, testRootPath, "ws")
	doc := f.mustFile(t, ws.Path, "a.txt", "a.txt", "v1")

	_, err := f.backend.ResolveLocation(f.ctx, loc("ws", "a.txt"))
	require.NoError(t, err)

	updated, err := f.backend.UpdateDocument(f.ctx, doc, "a.txt", repository.NewPayload("a.txt", "", []byte("v2")))
	require.NoError(t, err)
	assert.Equal(t, doc.ID, updated.ID)

	node, err := f.backend.ResolveLocation(f.ctx, loc("ws", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), node.Payload.Data)
}

// ============================================================================
// Remove
// ============================================================================

func TestRemoveItem(t *testing.T) {
	f := newFixture(t)
	ws := f.mustFolder(t, testRootPath, "ws")
	sub := f.mustFolder(t, ws.Path, "sub")

	// warm the cache with a descendant
	node, err := f.backend.ResolveLocation(f.ctx, loc("ws", "sub"))
	require.NoError(t, err)
	require.NotNil(t, node)

	require.NoError(t, f.backend.RemoveItem(f.ctx, loc("ws")))

	assert.True(t, f.get(t, ws.Path).IsDeleted(), "removed node stays as a trash occupant")
	assert.True(t, f.get(t, sub.Path).IsDeleted())

	node, err = f.backend.ResolveLocation(f.ctx, loc("ws", "sub"))
	require.NoError(t, err)
	assert.Nil(t, node)

	err = f.backend.RemoveItem(f.ctx, loc("ws"))
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestRemoveRef(t *testing.T) {
	f := newFixture(t)
	ws := f.mustFolder(t, testRootPath, "ws")

	require.NoError(t, f.backend.RemoveRef(f.ctx, ws.Ref()))
	assert.True(t, IsNotFound(f.backend.RemoveRef(f.ctx, ws.Ref())))
	assert.True(t, IsNotFound(f.backend.RemoveRef(f.ctx, repository.IDRef("nope"))))
}

// ============================================================================
// Move / Copy / Rename
// ============================================================================

func TestMoveItem(t *testing.T) {
	f := newFixture(t)
	src := f.mustFolder(t, testRootPath, "src")
	dst := f.mustFolder(t, testRootPath, "dst")
	f.mustFolder(t, src.Path, "child")

	source, err := f.backend.ResolveLocation(f.ctx, loc("src"))
	require.NoError(t, err)
	_, err = f.backend.ResolveLocation(f.ctx, loc("src", "child"))
	require.NoError(t, err)
	absent, err := f.backend.ResolveLocation(f.ctx, loc("dst", "renamed"))
	require.NoError(t, err)
	require.Nil(t, absent)

	moved, err := f.backend.MoveItem(f.ctx, source, dst.Ref(), "renamed")
	require.NoError(t, err)
	assert.Equal(t, source.ID, moved.ID)
	assert.Equal(t, rpath("dst", "renamed"), moved.Path)

	calls := f.session.calls.Load()
	node, err := f.backend.ResolveLocation(f.ctx, loc("dst", "renamed"))
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, source.ID, node.ID)
	assert.Equal(t, calls, f.session.calls.Load(), "target path is served from the cache")

	node, err = f.backend.ResolveLocation(f.ctx, loc("src"))
	require.NoError(t, err)
	assert.Nil(t, node)

	node, err = f.backend.ResolveLocation(f.ctx, loc("src", "child"))
	require.NoError(t, err)
	assert.Nil(t, node)

	node, err = f.backend.ResolveLocation(f.ctx, loc("dst", "renamed", "child"))
	require.NoError(t, err)
	assert.NotNil(t, node)
}

func TestMoveItem_KeepsNameByDefault(t *testing.T) {
	f := newFixture(t)
	a := f.mustFile(t, testRootPath, "a.txt", "a.txt", "x")
	dst := f.mustFolder(t, testRootPath, "dst")

	moved, err := f.backend.MoveItem(f.ctx, a, dst.Ref(), "")
	require.NoError(t, err)
	assert.Equal(t, rpath("dst", "a.txt"), moved.Path)
}

func TestMoveItem_ReclaimsTrashOccupant(t *testing.T) {
	f := newFixture(t)
	a := f.mustFile(t, testRootPath, "a.txt", "a.txt", "new")
	dst := f.mustFolder(t, testRootPath, "dst")
	old := f.mustFile(t, dst.Path, "a.txt", "a.txt", "old")
	f.mustTrash(t, old)

	moved, err := f.backend.MoveItem(f.ctx, a, dst.Ref(), "")
	require.NoError(t, err)
	assert.Equal(t, a.ID, moved.ID)
	assert.Equal(t, old.ID, f.get(t, rpath("dst", "a.txt.1700000000000")).ID)
}

func TestMoveItem_LiveOccupantConflicts(t *testing.T) {
	f := newFixture(t)
	a := f.mustFile(t, testRootPath, "a.txt", "a.txt", "new")
	dst := f.mustFolder(t, testRootPath, "dst")
	f.mustFile(t, dst.Path, "a.txt", "a.txt", "old")

	_, err := f.backend.MoveItem(f.ctx, a, dst.Ref(), "")
	assert.True(t, IsCode(err, ErrConflictOnReclaim), "got %v", err)
	assert.Equal(t, a.ID, f.get(t, rpath("a.txt")).ID)
}

func TestMoveItem_OntoItself(t *testing.T) {
	f := newFixture(t)
	a := f.mustFile(t, testRootPath, "a.txt", "a.txt", "x")
	root := f.get(t, testRootPath)

	moved, err := f.backend.MoveItem(f.ctx, a, root.Ref(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, a.Path, moved.Path)
}

func TestMoveItem_TargetNotFolder(t *testing.T) {
	f := newFixture(t)
	a := f.mustFile(t, testRootPath, "a.txt", "a.txt", "x")
	b := f.mustFile(t, testRootPath, "b.txt", "b.txt", "x")

	_, err := f.backend.MoveItem(f.ctx, a, b.Ref(), "")
	assert.True(t, IsCode(err, ErrNotFolder), "got %v", err)
}

func TestCopyItem(t *testing.T) {
	f := newFixture(t)
	src := f.mustFolder(t, testRootPath, "src")
	f.mustFile(t, src.Path, "a.txt", "a.txt", "x")
	dst := f.mustFolder(t, testRootPath, "dst")

	source, err := f.backend.ResolveLocation(f.ctx, loc("src"))
	require.NoError(t, err)

	copied, err := f.backend.CopyItem(f.ctx, source, dst.Ref(), "")
	require.NoError(t, err)
	assert.NotEqual(t, source.ID, copied.ID)
	assert.Equal(t, rpath("dst", "src"), copied.Path)

	calls := f.session.calls.Load()
	node, err := f.backend.ResolveLocation(f.ctx, loc("src"))
	require.NoError(t, err)
	assert.Equal(t, source.ID, node.ID)
	node, err = f.backend.ResolveLocation(f.ctx, loc("dst", "src"))
	require.NoError(t, err)
	assert.Equal(t, copied.ID, node.ID)
	assert.Equal(t, calls, f.session.calls.Load(), "both paths are served from the cache")

	node, err = f.backend.ResolveLocation(f.ctx, loc("dst", "src", "a.txt"))
	require.NoError(t, err)
	assert.NotNil(t, node)

	_, err = f.backend.CopyItem(f.ctx, source, dst.Ref(), "")
	assert.True(t, IsCode(err, ErrConflictOnReclaim), "got %v", err)
}

func TestRenameItem_Folder(t *testing.T) {
	f := newFixture(t)
	ws := f.mustFolder(t, testRootPath, "ws")
	f.mustFolder(t, ws.Path, "child")

	source, err := f.backend.ResolveLocation(f.ctx, loc("ws"))
	require.NoError(t, err)

	renamed, err := f.backend.RenameItem(f.ctx, source, "projects")
	require.NoError(t, err)
	assert.Equal(t, ws.ID, renamed.ID)
	assert.Equal(t, rpath("projects"), renamed.Path)
	assert.Equal(t, "projects", renamed.Title)

	node, err := f.backend.ResolveLocation(f.ctx, loc("ws"))
	require.NoError(t, err)
	assert.Nil(t, node)

	node, err = f.backend.ResolveLocation(f.ctx, loc("projects", "child"))
	require.NoError(t, err)
	assert.NotNil(t, node)
	assert.Equal(t, 1, f.metrics.operations["Rename"])
	assert.Zero(t, f.metrics.operations["Move"])
}

func TestRenameItem_LeafInPlace(t *testing.T) {
	f := newFixture(t)
	ws := f.mustFolder(t, testRootPath, "ws")
	doc := f.mustFile(t, ws.Path, "report", "report.txt", "data")
	require.Equal(t, "text/plain", doc.Payload.MediaType)

	// cache an absence for the new name
	node, err := f.backend.ResolveLocation(f.ctx, loc("ws", "report.png"))
	require.NoError(t, err)
	require.Nil(t, node)

	renamed, err := f.backend.RenameItem(f.ctx, doc, "report.png")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, renamed.ID)
	assert.Equal(t, doc.Path, renamed.Path, "in-place rename keeps the path")
	assert.Equal(t, "report.png", renamed.Title)
	assert.Equal(t, "report.png", renamed.Payload.Filename)
	assert.Equal(t, "image/png", renamed.Payload.MediaType)
	assert.Equal(t, []byte("data"), renamed.Payload.Data)

	node, err = f.backend.ResolveLocation(f.ctx, loc("ws", "report.png"))
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, doc.ID, node.ID)
	assert.Equal(t, "report.png", NodeDisplayName(node))
}

func TestRenameItem_LeafWithoutPayloadMoves(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.AlwaysCreateFile = true })
	bare, err := f.backend.CreateFile(f.ctx, loc(), "bare", nil)
	require.NoError(t, err)

	renamed, err := f.backend.RenameItem(f.ctx, bare, "other")
	require.NoError(t, err)
	assert.Equal(t, rpath("other"), renamed.Path)
	assert.Equal(t, "other", renamed.Title)
}

func TestRenameItem_InvalidName(t *testing.T) {
	f := newFixture(t)
	ws := f.mustFolder(t, testRootPath, "ws")

	_, err := f.backend.RenameItem(f.ctx, ws, "a/b")
	assert.Error(t, err)
	assert.Equal(t, ws.Path, f.get(t, ws.Path).Path)
}
