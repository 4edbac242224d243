package memory

import (
	"context"
	"testing"

	"github.com/marmos91/dittodav/pkg/content"
	contenttesting "github.com/marmos91/dittodav/pkg/content/testing"
)

// TestMemoryContentStore runs the complete content.Store test suite
// against the MemoryContentStore implementation.
func TestMemoryContentStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func() content.Store {
			store, err := NewMemoryContentStore(context.Background())
			if err != nil {
				t.Fatalf("Failed to create MemoryContentStore: %v", err)
			}
			return store
		},
	}

	suite.Run(t)
}
