package namespace

import (
	"context"
	"fmt"

	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/pkg/repository"
)

// ReclaimPath frees parent/name of a trash occupant by renaming the
// occupant aside to name.<epoch millis>. It reports true when an occupant
// was displaced, false when the slot was empty or held by a live node.
func (b *Backend) ReclaimPath(ctx context.Context, parent *repository.Node, name string) (bool, error) {
	_, displaced, err := b.reclaim(ctx, parent, name)
	if err != nil {
		return false, wrapError("Reclaim", repository.JoinPath(parent.Path, name), err)
	}
	return displaced, nil
}

// reclaim is ReclaimPath that also returns the live occupant, if any.
func (b *Backend) reclaim(ctx context.Context, parent *repository.Node, name string) (live *repository.Node, displaced bool, err error) {
	target := repository.JoinPath(parent.Path, name)

	occupant, err := b.session.Get(ctx, repository.PathRef(target))
	if repository.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !occupant.IsDeleted() {
		return occupant, false, nil
	}

	aside := fmt.Sprintf("%s.%d", name, b.now().UnixMilli())
	if _, err := b.session.Move(ctx, occupant.Ref(), parent.Ref(), aside); err != nil {
		return nil, false, fmt.Errorf("failed to move trash occupant %s aside: %w", target, err)
	}
	b.paths().removeTree(target)

	logger.Info("Reclaimed %s: trash occupant renamed to %s", target, aside)
	return nil, true, nil
}
