package repository

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// JoinPath joins a parent repository path and a child name.
func JoinPath(parent, name string) string {
	if parent == "" || parent == "/" {
		return "/" + name
	}
	return strings.TrimSuffix(parent, "/") + "/" + name
}

// SplitPath returns the parent path and last segment of a repository path.
func SplitPath(p string) (parent, name string) {
	p = path.Clean("/" + p)
	if p == "/" {
		return "/", ""
	}
	return path.Dir(p), path.Base(p)
}

// ValidateName rejects names that cannot be used as a path segment.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return NewStoreError(ErrInvalidArgument, "invalid node name", name)
	}
	return nil
}

// EnsurePath creates every missing container along p. The i-th created
// segment gets types[i]; segments past the end of types reuse the last one,
// and TypeFolder is used when types is empty. Existing nodes are kept.
func EnsurePath(ctx context.Context, s Session, p string, types ...string) (*Node, error) {
	node, err := s.Get(ctx, PathRef("/"))
	if err != nil {
		return nil, fmt.Errorf("failed to get repository root: %w", err)
	}

	segments := strings.Split(strings.Trim(path.Clean("/"+p), "/"), "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		docType := TypeFolder
		if len(types) > 0 {
			docType = types[min(i, len(types)-1)]
		}
		childPath := JoinPath(node.Path, segment)
		child, err := s.Get(ctx, PathRef(childPath))
		switch {
		case err == nil:
			node = child
		case IsNotFound(err):
			node, err = s.Create(ctx, node.Ref(), NodeSpec{Name: segment, Type: docType})
			if err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", childPath, err)
			}
		default:
			return nil, err
		}
	}
	return node, nil
}
