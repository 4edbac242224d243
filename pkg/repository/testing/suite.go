// Package testing provides a conformance suite for repository.Repository
// implementations.
package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/stretchr/testify/require"
)

// RepositoryTestSuite tests the repository contract, not implementation
// details, so it runs unchanged against the memory and badger backends.
//
// Usage:
//
//	func TestMyRepository(t *testing.T) {
//	    suite := &testing.RepositoryTestSuite{
//	        NewRepository: func(t *testing.T) repository.Repository {
//	            return myrepo.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type RepositoryTestSuite struct {
	// NewRepository creates a fresh, bootstrapped repository whose root
	// grants Everything to Everyone. Called once per test.
	NewRepository func(t *testing.T) repository.Repository
}

// Run executes all tests in the suite.
func (suite *RepositoryTestSuite) Run(t *testing.T) {
	t.Run("Nodes", suite.RunNodeTests)
	t.Run("Mutations", suite.RunMutationTests)
	t.Run("Locks", suite.RunLockTests)
	t.Run("Permissions", suite.RunPermissionTests)
	t.Run("Trash", suite.RunTrashTests)
}

// open creates a repository and a session acting as principal.
func (suite *RepositoryTestSuite) open(t *testing.T, principal string) (repository.Repository, repository.Session) {
	t.Helper()
	repo := suite.NewRepository(t)
	t.Cleanup(func() { _ = repo.Close() })
	session := repo.Open(principal)
	t.Cleanup(func() { _ = session.Close() })
	return repo, session
}

// mustCreate creates a node under the parent path or fails the test.
func mustCreate(t *testing.T, s repository.Session, parentPath, name, docType string) *repository.Node {
	t.Helper()
	node, err := s.Create(context.Background(), repository.PathRef(parentPath), repository.NodeSpec{Name: name, Type: docType})
	require.NoError(t, err)
	return node
}

// mustCreateFile creates a File leaf with a payload.
func mustCreateFile(t *testing.T, s repository.Session, parentPath, name string, data []byte) *repository.Node {
	t.Helper()
	node, err := s.Create(context.Background(), repository.PathRef(parentPath), repository.NodeSpec{
		Name:    name,
		Type:    repository.TypeFile,
		Payload: repository.NewPayload(name, "", data),
	})
	require.NoError(t, err)
	return node
}

func childNames(nodes []*repository.Node) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}
