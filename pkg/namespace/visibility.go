package namespace

import (
	"context"

	"github.com/marmos91/dittodav/pkg/repository"
)

// Visible reports whether a node is exposed in the namespace.
//
// A node is visible when all of these hold:
//   - it is not hidden from navigation
//   - it is not a trash occupant
//   - it carries the dublincore schema
//   - it is a container, or a leaf able to hold a payload
func Visible(node *repository.Node) bool {
	if node.HasFacet(repository.FacetHiddenInNavigation) {
		return false
	}
	if node.IsDeleted() {
		return false
	}
	if !node.HasSchema(repository.SchemaDublinCore) {
		return false
	}
	return node.IsFolder() || holdsPayload(node)
}

// holdsPayload is true for payload-bearing leaves, including those whose
// payload has not been set yet.
func holdsPayload(node *repository.Node) bool {
	return node.HasPayload() || node.HasSchema(repository.SchemaFile)
}

// VisibleChildren lists the visible children of a container in the
// repository's native order.
func (b *Backend) VisibleChildren(ctx context.Context, ref repository.Ref) ([]*repository.Node, error) {
	children, err := b.session.Children(ctx, ref)
	if err != nil {
		return nil, wrapError("Children", ref.String(), err)
	}

	visible := make([]*repository.Node, 0, len(children))
	for _, child := range children {
		if Visible(child) {
			visible = append(visible, child)
		}
	}
	return visible, nil
}
