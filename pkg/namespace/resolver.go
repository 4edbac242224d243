package namespace

import (
	"context"

	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/pkg/metrics"
	"github.com/marmos91/dittodav/pkg/repository"
)

// ResolveLocation resolves a client location to a live node.
//
// Returns (nil, nil) when nothing lives at the location: absence is an
// expected outcome, not an error. Errors are only returned when the
// repository itself fails.
//
// Resolution order:
//  1. Path cache (positive or negative hit)
//  2. Live node at the canonical path
//  3. Live node at the percent-encoded canonical path
//  4. Child scan: the parent's visible children are matched on their
//     payload filename (see filenameMatchers)
//
// The outcome, found or not, is cached under the canonical path.
func (b *Backend) ResolveLocation(ctx context.Context, location string) (*repository.Node, error) {
	return b.resolve(ctx, b.ParseLocation(location))
}

// Document is ResolveLocation under the name the protocol layer uses.
func (b *Backend) Document(ctx context.Context, location string) (*repository.Node, error) {
	return b.ResolveLocation(ctx, location)
}

// Exists reports whether a live node resolves from location.
func (b *Backend) Exists(ctx context.Context, location string) (bool, error) {
	node, err := b.ResolveLocation(ctx, location)
	if err != nil {
		return false, err
	}
	return node != nil && !node.IsDeleted(), nil
}

// resolve resolves a canonical path.
func (b *Backend) resolve(ctx context.Context, p string) (*repository.Node, error) {
	cache := b.paths()
	if node, found := cache.get(p); found {
		b.metrics.RecordResolution(metrics.StrategyCache)
		return node, nil
	}

	node, strategy, err := b.lookup(ctx, p)
	if err != nil {
		return nil, wrapError("Resolve", p, err)
	}

	cache.put(p, node)
	b.metrics.RecordResolution(strategy)
	logger.Debug("Resolved %s via %s", p, strategy)
	return node, nil
}

// lookup runs the repository strategies for a canonical path.
func (b *Backend) lookup(ctx context.Context, p string) (*repository.Node, string, error) {
	// ========================================================================
	// Step 1: Exact path
	// ========================================================================
	node, err := b.liveNode(ctx, p)
	if err != nil || node != nil {
		return node, metrics.StrategyExact, err
	}

	// ========================================================================
	// Step 2: Percent-encoded path
	// ========================================================================
	// Nodes created through escaping clients are stored under their escaped
	// name.
	if encoded := escapePath(p); encoded != p {
		node, err := b.liveNode(ctx, encoded)
		if err != nil || node != nil {
			return node, metrics.StrategyEncoded, err
		}
	}

	// ========================================================================
	// Step 3: Child scan on payload filenames
	// ========================================================================
	parentPath, name := repository.SplitPath(p)
	if name == "" {
		return nil, metrics.StrategyNotFound, nil
	}

	parent, err := b.resolveParent(ctx, parentPath)
	if err != nil {
		return nil, "", err
	}
	if parent == nil || !parent.IsFolder() {
		return nil, metrics.StrategyNotFound, nil
	}

	children, err := b.VisibleChildren(ctx, parent.Ref())
	if err != nil {
		return nil, "", err
	}
	for _, child := range children {
		if child.Payload == nil {
			continue
		}
		if how, ok := matchFilename(name, child.Payload.Filename); ok {
			logger.Debug("Matched %q to %s by %s filename comparison", name, child.Path, how)
			return child, metrics.StrategyChildScan, nil
		}
	}
	return nil, metrics.StrategyNotFound, nil
}

// resolveParent locates a container: cache first, then the exact path,
// then the path rebuilt from its parent and last segment. Payload
// filenames are never scanned since containers carry none.
func (b *Backend) resolveParent(ctx context.Context, p string) (*repository.Node, error) {
	cache := b.paths()
	if node, found := cache.get(p); found {
		b.metrics.RecordResolution(metrics.StrategyCache)
		return node, nil
	}

	strategy := metrics.StrategyExact
	node, err := b.liveNode(ctx, p)
	if err != nil {
		return nil, err
	}
	if node == nil {
		parentPath, name := repository.SplitPath(p)
		if rebuilt := repository.JoinPath(parentPath, name); rebuilt != p {
			strategy = metrics.StrategyFolder
			if node, err = b.liveNode(ctx, rebuilt); err != nil {
				return nil, err
			}
		}
	}
	if node == nil {
		strategy = metrics.StrategyNotFound
	}

	cache.put(p, node)
	b.metrics.RecordResolution(strategy)
	return node, nil
}

// liveNode returns the node at the repository path, or nil when there is
// none or it is a trash occupant.
func (b *Backend) liveNode(ctx context.Context, p string) (*repository.Node, error) {
	ref := repository.PathRef(p)
	exists, err := b.session.Exists(ctx, ref)
	if err != nil || !exists {
		return nil, err
	}
	node, err := b.session.Get(ctx, ref)
	if err != nil {
		if repository.IsNotFound(err) {
			// removed between the two calls
			return nil, nil
		}
		return nil, err
	}
	if node.IsDeleted() {
		return nil, nil
	}
	return node, nil
}
