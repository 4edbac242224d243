package content

import (
	"context"
	"io"

	"github.com/marmos91/dittodav/internal/ratelimiter"
)

// RateLimitedStore throttles every call to an underlying Store.
type RateLimitedStore struct {
	store   Store
	limiter *ratelimiter.RateLimiter
}

// NewRateLimitedStore wraps store so each call first takes a token from
// limiter. An unlimited limiter returns store unchanged.
func NewRateLimitedStore(store Store, limiter *ratelimiter.RateLimiter) Store {
	if limiter == nil || limiter.Unlimited() {
		return store
	}
	return &RateLimitedStore{store: store, limiter: limiter}
}

func (s *RateLimitedStore) WriteContent(ctx context.Context, id ID, data []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.store.WriteContent(ctx, id, data)
}

func (s *RateLimitedStore) ReadContent(ctx context.Context, id ID) (io.ReadCloser, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.store.ReadContent(ctx, id)
}

func (s *RateLimitedStore) ContentExists(ctx context.Context, id ID) (bool, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return false, err
	}
	return s.store.ContentExists(ctx, id)
}

func (s *RateLimitedStore) Delete(ctx context.Context, id ID) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
