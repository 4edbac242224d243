package content

import "errors"

// ============================================================================
// Standard Content Store Errors
// ============================================================================

// These errors provide a consistent way to indicate common failure conditions
// across all content store implementations. Repositories check for them and
// translate them into repository.StoreError codes.
//
// Error Wrapping:
// Implementations should wrap these errors with additional context:
//
//	if !exists {
//	    return fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
//	}

var (
	// ErrContentNotFound indicates the requested content does not exist.
	//
	// This error is returned when:
	//   - ReadContent() called with an unknown ID
	//   - ReadAll() called with an unknown ID
	ErrContentNotFound = errors.New("content not found")

	// ErrInvalidID indicates an empty or malformed content identifier.
	ErrInvalidID = errors.New("invalid content id")
)
