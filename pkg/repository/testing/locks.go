package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLockTests covers lock ownership rules.
func (suite *RepositoryTestSuite) RunLockTests(t *testing.T) {
	t.Run("SetAndGet", suite.testLockSetAndGet)
	t.Run("Reentrant", suite.testLockReentrant)
	t.Run("HeldByOther", suite.testLockHeldByOther)
	t.Run("BlocksWrites", suite.testLockBlocksWrites)
	t.Run("Remove", suite.testLockRemove)
}

func (suite *RepositoryTestSuite) testLockSetAndGet(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	a := mustCreateFile(t, s, "/", "a.txt", nil)

	lock, err := s.GetLock(ctx, a.Ref())
	require.NoError(t, err)
	assert.Nil(t, lock)

	lock, err = s.SetLock(ctx, a.Ref())
	require.NoError(t, err)
	assert.Equal(t, "alice", lock.Owner)

	got, err := s.GetLock(ctx, a.Ref())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Owner)
}

func (suite *RepositoryTestSuite) testLockReentrant(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	a := mustCreateFile(t, s, "/", "a.txt", nil)
	first, err := s.SetLock(ctx, a.Ref())
	require.NoError(t, err)
	second, err := s.SetLock(ctx, a.Ref())
	require.NoError(t, err)
	assert.Equal(t, first.Created.Unix(), second.Created.Unix())
}

func (suite *RepositoryTestSuite) testLockHeldByOther(t *testing.T) {
	repo, alice := suite.open(t, "alice")
	bob := repo.Open("bob")
	defer func() { _ = bob.Close() }()
	ctx := context.Background()

	a := mustCreateFile(t, alice, "/", "a.txt", nil)
	_, err := alice.SetLock(ctx, a.Ref())
	require.NoError(t, err)

	_, err = bob.SetLock(ctx, a.Ref())
	assert.True(t, repository.IsCode(err, repository.ErrLocked))

	err = bob.RemoveLock(ctx, a.Ref())
	assert.True(t, repository.IsCode(err, repository.ErrLocked))
}

func (suite *RepositoryTestSuite) testLockBlocksWrites(t *testing.T) {
	repo, alice := suite.open(t, "alice")
	bob := repo.Open("bob")
	defer func() { _ = bob.Close() }()
	ctx := context.Background()

	a := mustCreateFile(t, alice, "/", "a.txt", nil)
	_, err := alice.SetLock(ctx, a.Ref())
	require.NoError(t, err)

	node, err := bob.Get(ctx, a.Ref())
	require.NoError(t, err)
	node.Title = "changed"
	_, err = bob.Save(ctx, node)
	assert.True(t, repository.IsCode(err, repository.ErrLocked))

	_, err = bob.Move(ctx, a.Ref(), repository.PathRef("/"), "b.txt")
	assert.True(t, repository.IsCode(err, repository.ErrLocked))

	// The owner can still write
	node.Title = "mine"
	_, err = alice.Save(ctx, node)
	require.NoError(t, err)
}

func (suite *RepositoryTestSuite) testLockRemove(t *testing.T) {
	_, s := suite.open(t, "alice")
	ctx := context.Background()

	a := mustCreateFile(t, s, "/", "a.txt", nil)
	_, err := s.SetLock(ctx, a.Ref())
	require.NoError(t, err)
	require.NoError(t, s.RemoveLock(ctx, a.Ref()))
	// Removing a missing lock is a no-op
	require.NoError(t, s.RemoveLock(ctx, a.Ref()))

	lock, err := s.GetLock(ctx, a.Ref())
	require.NoError(t, err)
	assert.Nil(t, lock)
}
