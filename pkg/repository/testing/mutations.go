package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunMutationTests covers move, copy and lifecycle transitions.
func (suite *RepositoryTestSuite) RunMutationTests(t *testing.T) {
	t.Run("MoveRename", suite.testMoveRename)
	t.Run("MoveSubtree", suite.testMoveSubtree)
	t.Run("MoveCollision", suite.testMoveCollision)
	t.Run("MoveUnderItself", suite.testMoveUnderItself)
	t.Run("MoveSameSlot", suite.testMoveSameSlot)
	t.Run("CopySubtree", suite.testCopySubtree)
	t.Run("CopyCollision", suite.testCopyCollision)
	t.Run("LifecycleState", suite.testLifecycleState)
}

func (suite *RepositoryTestSuite) testMoveRename(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	file := mustCreateFile(t, s, "/", "a.txt", []byte("x"))
	moved, err := s.Move(ctx, file.Ref(), repository.PathRef("/"), "b.txt")
	require.NoError(t, err)
	assert.Equal(t, file.ID, moved.ID)
	assert.Equal(t, "/b.txt", moved.Path)
	assert.Equal(t, "b.txt", moved.Name)

	exists, err := s.Exists(ctx, repository.PathRef("/a.txt"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func (suite *RepositoryTestSuite) testMoveSubtree(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	mustCreate(t, s, "/", "src", repository.TypeFolder)
	mustCreate(t, s, "/src", "sub", repository.TypeFolder)
	leaf := mustCreateFile(t, s, "/src/sub", "leaf.txt", []byte("leaf"))
	dst := mustCreate(t, s, "/", "dst", repository.TypeFolder)

	_, err := s.Move(ctx, repository.PathRef("/src"), dst.Ref(), "moved")
	require.NoError(t, err)

	got, err := s.Get(ctx, leaf.Ref())
	require.NoError(t, err)
	assert.Equal(t, "/dst/moved/sub/leaf.txt", got.Path)
	assert.Equal(t, []byte("leaf"), got.Payload.Data)

	got, err = s.Get(ctx, repository.PathRef("/dst/moved/sub/leaf.txt"))
	require.NoError(t, err)
	assert.Equal(t, leaf.ID, got.ID)
}

func (suite *RepositoryTestSuite) testMoveCollision(t *testing.T) {
	_, s := suite.open(t, "alice")

	a := mustCreateFile(t, s, "/", "a.txt", nil)
	mustCreateFile(t, s, "/", "b.txt", nil)

	_, err := s.Move(context.Background(), a.Ref(), repository.PathRef("/"), "b.txt")
	assert.True(t, repository.IsCode(err, repository.ErrAlreadyExists))
}

func (suite *RepositoryTestSuite) testMoveUnderItself(t *testing.T) {
	_, s := suite.open(t, "alice")

	mustCreate(t, s, "/", "a", repository.TypeFolder)
	mustCreate(t, s, "/a", "b", repository.TypeFolder)

	_, err := s.Move(context.Background(), repository.PathRef("/a"), repository.PathRef("/a/b"), "a")
	assert.True(t, repository.IsCode(err, repository.ErrInvalidArgument))
}

func (suite *RepositoryTestSuite) testMoveSameSlot(t *testing.T) {
	_, s := suite.open(t, "alice")

	a := mustCreateFile(t, s, "/", "a.txt", nil)
	moved, err := s.Move(context.Background(), a.Ref(), repository.PathRef("/"), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/a.txt", moved.Path)
}

func (suite *RepositoryTestSuite) testCopySubtree(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	src := mustCreate(t, s, "/", "src", repository.TypeFolder)
	leaf := mustCreateFile(t, s, "/src", "leaf.txt", []byte("leaf"))

	copied, err := s.Copy(ctx, src.Ref(), repository.PathRef("/"), "copy")
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, copied.ID)
	assert.Equal(t, "/copy", copied.Path)

	got, err := s.Get(ctx, repository.PathRef("/copy/leaf.txt"))
	require.NoError(t, err)
	assert.NotEqual(t, leaf.ID, got.ID)
	assert.Equal(t, []byte("leaf"), got.Payload.Data)

	// The source is untouched
	orig, err := s.Get(ctx, leaf.Ref())
	require.NoError(t, err)
	assert.Equal(t, "/src/leaf.txt", orig.Path)
}

func (suite *RepositoryTestSuite) testCopyCollision(t *testing.T) {
	_, s := suite.open(t, "alice")

	a := mustCreateFile(t, s, "/", "a.txt", nil)
	mustCreateFile(t, s, "/", "b.txt", nil)

	_, err := s.Copy(context.Background(), a.Ref(), repository.PathRef("/"), "b.txt")
	assert.True(t, repository.IsCode(err, repository.ErrAlreadyExists))
}

func (suite *RepositoryTestSuite) testLifecycleState(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	a := mustCreateFile(t, s, "/", "a.txt", nil)
	deleted, err := s.SetLifecycleState(ctx, a.Ref(), repository.StateDeleted)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())

	// Deleted nodes remain addressable by path
	got, err := s.Get(ctx, repository.PathRef("/a.txt"))
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	restored, err := s.SetLifecycleState(ctx, a.Ref(), repository.StateActive)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
}
