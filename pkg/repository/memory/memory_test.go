package memory

import (
	"context"
	"testing"

	"github.com/marmos91/dittodav/pkg/repository"
	repotesting "github.com/marmos91/dittodav/pkg/repository/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	suite := &repotesting.RepositoryTestSuite{
		NewRepository: func(t *testing.T) repository.Repository {
			repo, err := NewMemoryRepository(context.Background(), Config{})
			require.NoError(t, err)
			return repo
		},
	}
	suite.Run(t)
}

func TestMemoryRepository_ChildrenInsertionOrder(t *testing.T) {
	repo, err := NewMemoryRepository(context.Background(), Config{})
	require.NoError(t, err)
	s := repo.Open("alice")
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := s.Create(ctx, repository.PathRef("/"), repository.NodeSpec{Name: name, Type: repository.TypeFolder})
		require.NoError(t, err)
	}

	children, err := s.Children(ctx, repository.PathRef("/"))
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, "zeta", children[0].Name)
	assert.Equal(t, "alpha", children[1].Name)
	assert.Equal(t, "mid", children[2].Name)
}

func TestMemoryRepository_FailedUpdateRollsBack(t *testing.T) {
	repo, err := NewMemoryRepository(context.Background(), Config{})
	require.NoError(t, err)
	s := repo.Open("alice")
	ctx := context.Background()

	_, err = s.Create(ctx, repository.PathRef("/"), repository.NodeSpec{Name: "a", Type: repository.TypeFolder})
	require.NoError(t, err)
	_, err = s.Create(ctx, repository.PathRef("/a"), repository.NodeSpec{Name: "b", Type: repository.TypeFolder})
	require.NoError(t, err)

	// Moving /a under its own child fails before any write
	_, err = s.Move(ctx, repository.PathRef("/a"), repository.PathRef("/a/b"), "a")
	require.Error(t, err)

	got, err := s.Get(ctx, repository.PathRef("/a/b"))
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got.Path)
}

func TestMemoryRepository_ReturnedNodesAreCopies(t *testing.T) {
	repo, err := NewMemoryRepository(context.Background(), Config{})
	require.NoError(t, err)
	s := repo.Open("alice")
	ctx := context.Background()

	node, err := s.Create(ctx, repository.PathRef("/"), repository.NodeSpec{Name: "a", Type: repository.TypeFolder})
	require.NoError(t, err)
	node.Title = "mutated locally"

	got, err := s.Get(ctx, node.Ref())
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
}
