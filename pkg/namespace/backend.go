// Package namespace adapts a path-addressed protocol surface to the
// identifier-based, soft-deleting document repository.
//
// A Backend is bound to one repository session and one backend root. It
// turns client locations into repository paths, resolves them through a
// bounded path cache and a multi-strategy lookup, and implements the
// create/move/copy/rename/remove mutations and the lock protocol on top of
// the session, keeping the cache coherent on every write.
//
// Deleted nodes stay in the tree as trash occupants. Before anything is
// created or moved under a name, a trash occupant holding that name is
// renamed aside; a live occupant is reported as ErrConflictOnReclaim.
//
// Thread Safety:
// A Backend carries no goroutines. It may be used concurrently within its
// session; concurrent writers across sessions are serialized by the
// repository, and a lost race surfaces as ErrRepositoryFailure.
package namespace

import (
	"context"
	"fmt"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/pkg/filemanager"
	"github.com/marmos91/dittodav/pkg/metrics"
	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/marmos91/dittodav/pkg/repository/trash"
)

// Config describes one backend: the repository subtree it exposes and the
// client URL prefix it is mounted under.
type Config struct {
	// Name identifies the backend (metrics label, CLI selection)
	Name string

	// DisplayName is shown to clients; defaults to Name
	DisplayName string

	// RootPath is the repository path exposed by the backend
	RootPath string

	// RootURL is the client location prefix mapped onto RootPath
	RootURL string

	// AlwaysCreateFile creates every uploaded file as a plain File instead
	// of letting the file importer pick a type from the media type
	AlwaysCreateFile bool

	// CacheSize bounds the path cache (default DefaultCacheSize)
	CacheSize int
}

// Dependencies are the collaborators of a backend. Zero values get the
// built-in implementations.
type Dependencies struct {
	// Trash soft-deletes removed nodes (default trash.New())
	Trash repository.TrashService

	// Files creates leaves from payloads (default filemanager.New())
	Files repository.FileImporter

	// Metrics records operations and cache activity (default no-op)
	Metrics metrics.NamespaceMetrics

	// Now is the clock used to name displaced trash occupants
	Now func() time.Time
}

// Backend is the namespace adapter for one backend root.
type Backend struct {
	session repository.Session
	cfg     Config

	trash   repository.TrashService
	files   repository.FileImporter
	metrics metrics.NamespaceMetrics
	now     func() time.Time

	cacheOnce sync.Once
	cache     *pathCache

	// virtualNames is computed on first use and never invalidated
	virtualMu    sync.Mutex
	virtualNames []string
}

// New creates a backend bound to session.
//
// Returns an error if the root path or root URL is not absolute, or the
// cache size is negative.
func New(session repository.Session, cfg Config, deps Dependencies) (*Backend, error) {
	if session == nil {
		return nil, fmt.Errorf("namespace: session is required")
	}
	if !path.IsAbs(cfg.RootPath) {
		return nil, fmt.Errorf("namespace: root path %q must be absolute", cfg.RootPath)
	}
	if !path.IsAbs(cfg.RootURL) {
		return nil, fmt.Errorf("namespace: root URL %q must be absolute", cfg.RootURL)
	}
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("namespace: cache size must be positive, got %d", cfg.CacheSize)
	}

	cfg.RootPath = path.Clean(cfg.RootPath)
	cfg.RootURL = path.Clean(cfg.RootURL)
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.Name == "" {
		cfg.Name = path.Base(cfg.RootURL)
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = cfg.Name
	}

	b := &Backend{
		session: session,
		cfg:     cfg,
		trash:   deps.Trash,
		files:   deps.Files,
		metrics: deps.Metrics,
		now:     deps.Now,
	}
	if b.trash == nil {
		b.trash = trash.New()
	}
	if b.files == nil {
		b.files = filemanager.New()
	}
	if b.metrics == nil {
		b.metrics = metrics.NewNoopNamespaceMetrics()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b, nil
}

// paths returns the path cache, creating it on first use.
func (b *Backend) paths() *pathCache {
	b.cacheOnce.Do(func() {
		cache, err := newPathCache(b.cfg.CacheSize, b.metrics)
		if err != nil {
			// New rejects sizes lru cannot handle
			panic(fmt.Sprintf("namespace: create path cache: %v", err))
		}
		b.cache = cache
	})
	return b.cache
}

// Name returns the backend name.
func (b *Backend) Name() string { return b.cfg.Name }

// DisplayName returns the name shown to clients.
func (b *Backend) DisplayName() string { return b.cfg.DisplayName }

// RootPath returns the repository path exposed by the backend.
func (b *Backend) RootPath() string { return b.cfg.RootPath }

// RootURL returns the client location prefix of the backend.
func (b *Backend) RootURL() string { return b.cfg.RootURL }

// Session returns the repository session the backend is bound to.
func (b *Backend) Session() repository.Session { return b.session }

// VirtualFolderNames returns the names of the visible containers and
// leaves directly under the backend root.
//
// The list is computed on first success and kept for the lifetime of the
// backend: top-level nodes created or removed afterwards are not reflected.
//
// Note: nothing invalidates the list, so it goes stale if the top-level
// containers change while the backend is alive. Whether it should follow
// mutations under the root is an open question.
func (b *Backend) VirtualFolderNames(ctx context.Context) ([]string, error) {
	b.virtualMu.Lock()
	defer b.virtualMu.Unlock()

	if b.virtualNames == nil {
		children, err := b.VisibleChildren(ctx, repository.PathRef(b.cfg.RootPath))
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(children))
		for _, child := range children {
			names = append(names, child.Name)
		}
		b.virtualNames = names
		logger.Debug("Backend %s: %d virtual folders", b.cfg.Name, len(names))
	}
	return slices.Clone(b.virtualNames), nil
}

// NodeDisplayName returns the name a node is listed under: the node name
// for containers, the payload filename for leaves that have one.
func NodeDisplayName(node *repository.Node) string {
	if node.IsFolder() {
		return node.Name
	}
	if node.Payload != nil && node.Payload.Filename != "" {
		return node.Payload.Filename
	}
	return node.Name
}

// HasPermission checks the session principal's permission on ref.
func (b *Backend) HasPermission(ctx context.Context, ref repository.Ref, perm repository.Permission) (bool, error) {
	ok, err := b.session.HasPermission(ctx, ref, perm)
	if err != nil {
		return false, wrapError("HasPermission", ref.String(), err)
	}
	return ok, nil
}

// observe records an operation outcome; use with a deferred call and a
// named error result.
func (b *Backend) observe(op string, start time.Time, err *error) {
	b.metrics.RecordOperation(op, time.Since(start), *err)
}
