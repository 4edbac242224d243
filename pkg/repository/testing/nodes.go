package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunNodeTests covers creation, lookup and listing.
func (suite *RepositoryTestSuite) RunNodeTests(t *testing.T) {
	t.Run("Root", suite.testRoot)
	t.Run("CreateAndGet", suite.testCreateAndGet)
	t.Run("GetByID", suite.testGetByID)
	t.Run("CreateNameCollision", suite.testCreateNameCollision)
	t.Run("CreateUnderLeaf", suite.testCreateUnderLeaf)
	t.Run("CreateUnknownType", suite.testCreateUnknownType)
	t.Run("CreateInvalidName", suite.testCreateInvalidName)
	t.Run("PayloadMediaType", suite.testPayloadMediaType)
	t.Run("Children", suite.testChildren)
	t.Run("Exists", suite.testExists)
	t.Run("EnsurePath", suite.testEnsurePath)
	t.Run("Save", suite.testSave)
	t.Run("CancelledContext", suite.testCancelledContext)
}

func (suite *RepositoryTestSuite) testRoot(t *testing.T) {
	_, s := suite.open(t, "alice")

	root, err := s.Get(context.Background(), repository.PathRef("/"))
	require.NoError(t, err)
	assert.Equal(t, "/", root.Path)
	assert.Equal(t, repository.TypeRoot, root.Type)
	assert.True(t, root.IsFolder())
	assert.Empty(t, root.ParentID)
}

func (suite *RepositoryTestSuite) testCreateAndGet(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	folder := mustCreate(t, s, "/", "docs", repository.TypeFolder)
	assert.Equal(t, "/docs", folder.Path)
	assert.Equal(t, "docs", folder.Title)
	assert.Equal(t, repository.StateActive, folder.State)
	assert.True(t, folder.HasSchema(repository.SchemaDublinCore))
	assert.NotEmpty(t, folder.ID)

	file := mustCreateFile(t, s, "/docs", "a.txt", []byte("hello"))
	assert.Equal(t, "/docs/a.txt", file.Path)
	assert.Equal(t, folder.ID, file.ParentID)

	got, err := s.Get(ctx, repository.PathRef("/docs/a.txt"))
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)
	require.NotNil(t, got.Payload)
	assert.Equal(t, []byte("hello"), got.Payload.Data)
	assert.Equal(t, int64(5), got.Payload.Length)

	_, err = s.Get(ctx, repository.PathRef("/docs/missing"))
	assert.True(t, repository.IsNotFound(err))
}

func (suite *RepositoryTestSuite) testGetByID(t *testing.T) {
	_, s := suite.open(t, "alice")

	folder := mustCreate(t, s, "/", "docs", repository.TypeFolder)
	got, err := s.Get(context.Background(), folder.Ref())
	require.NoError(t, err)
	assert.Equal(t, "/docs", got.Path)

	_, err = s.Get(context.Background(), repository.IDRef("no-such-id"))
	assert.True(t, repository.IsNotFound(err))
}

func (suite *RepositoryTestSuite) testCreateNameCollision(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	node := mustCreate(t, s, "/", "docs", repository.TypeFolder)
	_, err := s.Create(ctx, repository.PathRef("/"), repository.NodeSpec{Name: "docs", Type: repository.TypeFolder})
	assert.True(t, repository.IsCode(err, repository.ErrAlreadyExists))

	// A deleted occupant still holds the name
	_, err = s.SetLifecycleState(ctx, node.Ref(), repository.StateDeleted)
	require.NoError(t, err)
	_, err = s.Create(ctx, repository.PathRef("/"), repository.NodeSpec{Name: "docs", Type: repository.TypeFolder})
	assert.True(t, repository.IsCode(err, repository.ErrAlreadyExists))
}

func (suite *RepositoryTestSuite) testCreateUnderLeaf(t *testing.T) {
	_, s := suite.open(t, "alice")

	mustCreateFile(t, s, "/", "a.txt", []byte("x"))
	_, err := s.Create(context.Background(), repository.PathRef("/a.txt"), repository.NodeSpec{Name: "b", Type: repository.TypeFolder})
	assert.True(t, repository.IsCode(err, repository.ErrNotDirectory))
}

func (suite *RepositoryTestSuite) testCreateUnknownType(t *testing.T) {
	_, s := suite.open(t, "alice")

	_, err := s.Create(context.Background(), repository.PathRef("/"), repository.NodeSpec{Name: "x", Type: "Spaceship"})
	assert.True(t, repository.IsCode(err, repository.ErrInvalidArgument))
}

func (suite *RepositoryTestSuite) testCreateInvalidName(t *testing.T) {
	_, s := suite.open(t, "alice")

	for _, name := range []string{"", ".", "..", "a/b"} {
		_, err := s.Create(context.Background(), repository.PathRef("/"), repository.NodeSpec{Name: name, Type: repository.TypeFolder})
		assert.True(t, repository.IsCode(err, repository.ErrInvalidArgument), "name %q", name)
	}
}

func (suite *RepositoryTestSuite) testPayloadMediaType(t *testing.T) {
	_, s := suite.open(t, "alice")

	file := mustCreateFile(t, s, "/", "notes.txt", []byte("plain text"))
	assert.Equal(t, "text/plain", file.Payload.MediaType)

	// Folders never carry payloads
	folder, err := s.Create(context.Background(), repository.PathRef("/"), repository.NodeSpec{
		Name:    "dir",
		Type:    repository.TypeFolder,
		Payload: repository.NewPayload("x", "", []byte("x")),
	})
	require.NoError(t, err)
	assert.Nil(t, folder.Payload)
}

func (suite *RepositoryTestSuite) testChildren(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	mustCreate(t, s, "/", "a", repository.TypeFolder)
	mustCreate(t, s, "/", "b", repository.TypeHiddenFolder)
	c := mustCreateFile(t, s, "/", "c.txt", nil)
	_, err := s.SetLifecycleState(ctx, c.Ref(), repository.StateDeleted)
	require.NoError(t, err)

	children, err := s.Children(ctx, repository.PathRef("/"))
	require.NoError(t, err)
	// Hidden and deleted children are listed too
	assert.ElementsMatch(t, []string{"a", "b", "c.txt"}, childNames(children))

	_, err = s.Children(ctx, repository.PathRef("/c.txt"))
	assert.True(t, repository.IsCode(err, repository.ErrNotDirectory))
}

func (suite *RepositoryTestSuite) testExists(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	mustCreate(t, s, "/", "a", repository.TypeFolder)

	exists, err := s.Exists(ctx, repository.PathRef("/a"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Exists(ctx, repository.PathRef("/a/b"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func (suite *RepositoryTestSuite) testEnsurePath(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	node, err := repository.EnsurePath(ctx, s, "/default-domain/workspaces/ws",
		repository.TypeDomain, repository.TypeWorkspaceRoot, repository.TypeWorkspace)
	require.NoError(t, err)
	assert.Equal(t, "/default-domain/workspaces/ws", node.Path)
	assert.Equal(t, repository.TypeWorkspace, node.Type)

	domain, err := s.Get(ctx, repository.PathRef("/default-domain"))
	require.NoError(t, err)
	assert.Equal(t, repository.TypeDomain, domain.Type)

	// Idempotent
	again, err := repository.EnsurePath(ctx, s, "/default-domain/workspaces/ws")
	require.NoError(t, err)
	assert.Equal(t, node.ID, again.ID)
}

func (suite *RepositoryTestSuite) testSave(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	file := mustCreateFile(t, s, "/", "a.txt", []byte("v1"))
	file.Title = "Report"
	file.Payload = repository.NewPayload("a.txt", "", []byte("version two"))

	saved, err := s.Save(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, "Report", saved.Title)
	assert.Equal(t, int64(11), saved.Payload.Length)
	assert.Equal(t, "text/plain", saved.Payload.MediaType)

	got, err := s.Get(ctx, file.Ref())
	require.NoError(t, err)
	assert.Equal(t, []byte("version two"), got.Payload.Data)
	assert.Equal(t, "Report", got.Title)
}

func (suite *RepositoryTestSuite) testCancelledContext(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, repository.PathRef("/"))
	assert.ErrorIs(t, err, context.Canceled)
}
