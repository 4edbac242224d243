package testing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/marmos91/dittodav/pkg/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreTestSuite is a test suite for content.Store implementations.
// It tests the interface contract, not implementation details, making it
// reusable across the memory, filesystem and S3 backends.
//
// Usage:
//
//	func TestMyContentStore(t *testing.T) {
//	    suite := &testing.StoreTestSuite{
//	        NewStore: func() content.Store {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh Store instance
	// for each test. This ensures test isolation.
	NewStore func() content.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("WriteRead", suite.testWriteRead)
	t.Run("Overwrite", suite.testOverwrite)
	t.Run("EmptyContent", suite.testEmptyContent)
	t.Run("ReadNotFound", suite.testReadNotFound)
	t.Run("Exists", suite.testExists)
	t.Run("DeleteIdempotent", suite.testDeleteIdempotent)
	t.Run("InvalidID", suite.testInvalidID)
	t.Run("CancelledContext", suite.testCancelledContext)
}

// generateTestID returns an ID unique to this test run.
func generateTestID(name string) content.ID {
	return content.ID(fmt.Sprintf("test-%s-%d", name, time.Now().UnixNano()))
}

func (suite *StoreTestSuite) testWriteRead(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()
	id := generateTestID("write-read")

	require.NoError(t, store.WriteContent(ctx, id, []byte("Hello, World!")))

	data, err := content.ReadAll(ctx, store, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello, World!"), data)
}

func (suite *StoreTestSuite) testOverwrite(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()
	id := generateTestID("overwrite")

	require.NoError(t, store.WriteContent(ctx, id, []byte("Old data that is longer")))
	require.NoError(t, store.WriteContent(ctx, id, []byte("New data")))

	data, err := content.ReadAll(ctx, store, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("New data"), data)
}

func (suite *StoreTestSuite) testEmptyContent(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()
	id := generateTestID("empty")

	require.NoError(t, store.WriteContent(ctx, id, nil))

	exists, err := store.ContentExists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := content.ReadAll(ctx, store, id)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func (suite *StoreTestSuite) testReadNotFound(t *testing.T) {
	store := suite.NewStore()
	_, err := store.ReadContent(context.Background(), generateTestID("missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, content.ErrContentNotFound))
}

func (suite *StoreTestSuite) testExists(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()
	id := generateTestID("exists")

	exists, err := store.ContentExists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.WriteContent(ctx, id, []byte("x")))
	exists, err = store.ContentExists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)
}

func (suite *StoreTestSuite) testDeleteIdempotent(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()
	id := generateTestID("delete")

	require.NoError(t, store.WriteContent(ctx, id, []byte("x")))
	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id))

	exists, err := store.ContentExists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
}

func (suite *StoreTestSuite) testInvalidID(t *testing.T) {
	store := suite.NewStore()
	err := store.WriteContent(context.Background(), "", []byte("x"))
	assert.ErrorIs(t, err, content.ErrInvalidID)
}

func (suite *StoreTestSuite) testCancelledContext(t *testing.T) {
	store := suite.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.WriteContent(ctx, generateTestID("cancelled"), []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
