// Package trash implements repository.TrashService by lifecycle transition.
package trash

import (
	"context"
	"fmt"

	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/pkg/repository"
)

// Service soft-deletes nodes and their descendants.
//
// Nodes keep their name and position: a trashed node stays a trash
// occupant of its slot until it is renamed aside.
type Service struct{}

var _ repository.TrashService = Service{}

// New returns a trash service.
func New() Service {
	return Service{}
}

// Trash transitions every node (and its subtree) to StateDeleted. Nodes
// that are already deleted are skipped. The first failure aborts the
// remaining nodes.
func (Service) Trash(ctx context.Context, session repository.Session, nodes []*repository.Node) error {
	for _, node := range nodes {
		if err := trashTree(ctx, session, node); err != nil {
			return fmt.Errorf("failed to trash %s: %w", node.Path, err)
		}
	}
	return nil
}

func trashTree(ctx context.Context, session repository.Session, node *repository.Node) error {
	if !node.IsDeleted() {
		if _, err := session.SetLifecycleState(ctx, node.Ref(), repository.StateDeleted); err != nil {
			return err
		}
		logger.Debug("Trashed %s (%s)", node.Path, node.ID)
	}
	if !node.IsFolder() {
		return nil
	}

	children, err := session.Children(ctx, node.Ref())
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := trashTree(ctx, session, child); err != nil {
			return err
		}
	}
	return nil
}
