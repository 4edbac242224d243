package fs

import (
	"context"
	"os"
	"testing"

	"github.com/marmos91/dittodav/pkg/content"
	contenttesting "github.com/marmos91/dittodav/pkg/content/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSContentStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func() content.Store {
			store, err := NewFSContentStore(context.Background(), t.TempDir())
			require.NoError(t, err)
			return store
		},
	}

	suite.Run(t)
}

func TestFSContentStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSContentStore(context.Background(), dir)
	require.NoError(t, err)

	require.NoError(t, store.WriteContent(context.Background(), "a/b", []byte("payload")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "612f62", entries[0].Name())
}
