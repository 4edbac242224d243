package namespace

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/pkg/metrics"
	"github.com/marmos91/dittodav/pkg/repository"
)

// DefaultCacheSize is the default capacity of the path cache.
const DefaultCacheSize = 255

// cacheEntry is a resolved path: a node, or a confirmed absence when node
// is nil.
type cacheEntry struct {
	node *repository.Node
}

// pathCache maps canonical paths to resolution results.
//
// Cache Strategy:
//   - Bounded capacity, least recently used entry evicted first
//   - Negative results are cached as well
//   - No expiry: entries are only dropped on eviction or invalidation by
//     the mutations of the owning backend
//
// Nodes are cloned on the way in and out so callers can modify what they
// get back without corrupting the cache.
//
// Thread Safety:
// Safe for concurrent use; the LRU serializes every access.
type pathCache struct {
	entries *lru.Cache[string, cacheEntry]
	metrics metrics.NamespaceMetrics
}

func newPathCache(size int, m metrics.NamespaceMetrics) (*pathCache, error) {
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &pathCache{entries: entries, metrics: m}, nil
}

// get returns the cached result for p. found is false when p is unknown;
// found with a nil node means p is known to be absent. get never reaches
// the repository.
func (c *pathCache) get(p string) (node *repository.Node, found bool) {
	entry, ok := c.entries.Get(p)
	c.metrics.RecordCacheLookup(ok)
	if !ok {
		logger.Debug("Path cache miss: %s", p)
		return nil, false
	}
	logger.Debug("Path cache hit: %s (absent=%v)", p, entry.node == nil)
	return entry.node.Clone(), true
}

// put records a resolution result; a nil node records an absence.
func (c *pathCache) put(p string, node *repository.Node) {
	c.entries.Add(p, cacheEntry{node: node.Clone()})
	c.metrics.SetCacheEntries(c.entries.Len())
}

// remove drops the entry for p.
func (c *pathCache) remove(p string) {
	c.entries.Remove(p)
	c.metrics.SetCacheEntries(c.entries.Len())
}

// removeTree drops p and every entry below it.
func (c *pathCache) removeTree(p string) {
	prefix := strings.TrimSuffix(p, "/") + "/"
	for _, key := range c.entries.Keys() {
		if key == p || strings.HasPrefix(key, prefix) {
			c.entries.Remove(key)
		}
	}
	c.metrics.SetCacheEntries(c.entries.Len())
}

// removeNode drops every entry resolving to the node, whatever key it was
// cached under.
func (c *pathCache) removeNode(id string) {
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok && entry.node != nil && entry.node.ID == id {
			c.entries.Remove(key)
		}
	}
	c.metrics.SetCacheEntries(c.entries.Len())
}

func (c *pathCache) len() int {
	return c.entries.Len()
}
