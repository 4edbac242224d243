package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/marmos91/dittodav/pkg/repository/trash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTrashTests covers the trash service over this repository.
func (suite *RepositoryTestSuite) RunTrashTests(t *testing.T) {
	t.Run("TrashSubtree", suite.testTrashSubtree)
	t.Run("TrashDenied", suite.testTrashDenied)
}

func (suite *RepositoryTestSuite) testTrashSubtree(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	folder := mustCreate(t, s, "/", "f", repository.TypeFolder)
	leaf := mustCreateFile(t, s, "/f", "leaf.txt", []byte("x"))

	require.NoError(t, trash.New().Trash(ctx, s, []*repository.Node{folder}))

	for _, ref := range []repository.Ref{folder.Ref(), leaf.Ref()} {
		got, err := s.Get(ctx, ref)
		require.NoError(t, err)
		assert.True(t, got.IsDeleted(), got.Path)
	}
}

func (suite *RepositoryTestSuite) testTrashDenied(t *testing.T) {
	repo, alice := suite.open(t, "alice")
	bob := repo.Open("bob")
	defer func() { _ = bob.Close() }()
	ctx := context.Background()

	leaf := mustCreateFile(t, alice, "/", "leaf.txt", nil)
	require.NoError(t, repo.SetACL(ctx, leaf.Ref(), []repository.ACE{
		{Principal: "bob", Permission: repository.PermRemove, Granted: false},
	}))

	err := trash.New().Trash(ctx, bob, []*repository.Node{leaf})
	assert.True(t, repository.IsCode(err, repository.ErrPermissionDenied))
}
