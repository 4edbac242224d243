package namespace

import (
	"path"
	"strings"
)

// segments splits a slash-delimited path into its non-empty segments.
func segments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// ParseLocation maps a client location to its canonical repository path.
//
// As many leading segments as the root URL has are dropped from the
// location, and the remainder is re-rooted under the backend root path.
// The remainder is cleaned before re-rooting, so ".." segments never
// climb above the root. ParseLocation is pure: it neither reads nor
// writes the cache.
//
// Example, with root URL "/dav/workspaces" and root path
// "/default-domain/workspaces":
//
//	/dav/workspaces/ws/a.txt  ->  /default-domain/workspaces/ws/a.txt
func (b *Backend) ParseLocation(location string) string {
	parts := segments(location)
	cut := len(segments(b.cfg.RootURL))
	if cut > len(parts) {
		cut = len(parts)
	}

	rest := path.Clean("/" + strings.Join(parts[cut:], "/"))
	if rest == "/" {
		return b.cfg.RootPath
	}
	return path.Join(b.cfg.RootPath, rest)
}

// GetVirtualPath is the inverse of ParseLocation: it maps a repository
// path back to the client location. ok is false when repoPath is not at
// or below the backend root path.
func (b *Backend) GetVirtualPath(repoPath string) (location string, ok bool) {
	root := b.cfg.RootPath
	var rest string
	switch {
	case repoPath == root:
	case root == "/" && strings.HasPrefix(repoPath, "/"):
		rest = repoPath
	case strings.HasPrefix(repoPath, root+"/"):
		rest = repoPath[len(root):]
	default:
		return "", false
	}

	location = strings.TrimSuffix(b.cfg.RootURL, "/") + rest
	if location == "" {
		location = "/"
	}
	return location, true
}

// IsRename reports whether moving source to destination keeps the parent,
// i.e. the move only changes the last segment.
func IsRename(source, destination string) bool {
	return path.Dir(path.Clean("/"+source)) == path.Dir(path.Clean("/"+destination))
}
