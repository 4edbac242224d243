package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPermissionTests covers ACL evaluation.
func (suite *RepositoryTestSuite) RunPermissionTests(t *testing.T) {
	t.Run("DenyRead", suite.testDenyRead)
	t.Run("DenyWriteKeepsRead", suite.testDenyWriteKeepsRead)
	t.Run("InheritedFromAncestor", suite.testInheritedFromAncestor)
	t.Run("ChildrenFiltersUnreadable", suite.testChildrenFiltersUnreadable)
	t.Run("HasPermission", suite.testHasPermission)
}

func (suite *RepositoryTestSuite) testDenyRead(t *testing.T) {
	repo, alice := suite.open(t, "alice")
	bob := repo.Open("bob")
	defer func() { _ = bob.Close() }()
	ctx := context.Background()

	secret := mustCreate(t, alice, "/", "secret", repository.TypeFolder)
	require.NoError(t, repo.SetACL(ctx, secret.Ref(), []repository.ACE{
		{Principal: "bob", Permission: repository.PermEverything, Granted: false},
	}))

	_, err := bob.Get(ctx, secret.Ref())
	assert.True(t, repository.IsCode(err, repository.ErrPermissionDenied))

	_, err = alice.Get(ctx, secret.Ref())
	assert.NoError(t, err)
}

func (suite *RepositoryTestSuite) testDenyWriteKeepsRead(t *testing.T) {
	repo, alice := suite.open(t, "alice")
	bob := repo.Open("bob")
	defer func() { _ = bob.Close() }()
	ctx := context.Background()

	ro := mustCreate(t, alice, "/", "ro", repository.TypeFolder)
	require.NoError(t, repo.SetACL(ctx, ro.Ref(), []repository.ACE{
		{Principal: "bob", Permission: repository.PermWrite, Granted: false},
	}))

	_, err := bob.Get(ctx, ro.Ref())
	require.NoError(t, err)

	_, err = bob.Create(ctx, ro.Ref(), repository.NodeSpec{Name: "x", Type: repository.TypeFolder})
	assert.True(t, repository.IsCode(err, repository.ErrPermissionDenied))
}

func (suite *RepositoryTestSuite) testInheritedFromAncestor(t *testing.T) {
	repo, alice := suite.open(t, "alice")
	bob := repo.Open("bob")
	defer func() { _ = bob.Close() }()
	ctx := context.Background()

	top := mustCreate(t, alice, "/", "top", repository.TypeFolder)
	mustCreate(t, alice, "/top", "inner", repository.TypeFolder)
	require.NoError(t, repo.SetACL(ctx, top.Ref(), []repository.ACE{
		{Principal: "bob", Permission: repository.PermRead, Granted: false},
	}))

	_, err := bob.Get(ctx, repository.PathRef("/top/inner"))
	assert.True(t, repository.IsCode(err, repository.ErrPermissionDenied))
}

func (suite *RepositoryTestSuite) testChildrenFiltersUnreadable(t *testing.T) {
	repo, alice := suite.open(t, "alice")
	bob := repo.Open("bob")
	defer func() { _ = bob.Close() }()
	ctx := context.Background()

	mustCreate(t, alice, "/", "open", repository.TypeFolder)
	hidden := mustCreate(t, alice, "/", "closed", repository.TypeFolder)
	require.NoError(t, repo.SetACL(ctx, hidden.Ref(), []repository.ACE{
		{Principal: "bob", Permission: repository.PermRead, Granted: false},
	}))

	children, err := bob.Children(ctx, repository.PathRef("/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"open"}, childNames(children))
}

func (suite *RepositoryTestSuite) testHasPermission(t *testing.T) {
	repo, alice := suite.open(t, "alice")
	bob := repo.Open("bob")
	defer func() { _ = bob.Close() }()
	ctx := context.Background()

	folder := mustCreate(t, alice, "/", "f", repository.TypeFolder)
	require.NoError(t, repo.SetACL(ctx, folder.Ref(), []repository.ACE{
		{Principal: "bob", Permission: repository.PermRemove, Granted: false},
	}))

	ok, err := bob.HasPermission(ctx, folder.Ref(), repository.PermRemove)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = bob.HasPermission(ctx, folder.Ref(), repository.PermWrite)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = alice.HasPermission(ctx, folder.Ref(), repository.PermRemove)
	require.NoError(t, err)
	assert.True(t, ok)
}
