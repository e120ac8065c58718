package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/saftree/storagebridge/internal/logging"
	"go.uber.org/zap"
)

// treeScanDepth bounds the heuristic search for a tree's filesystem root.
// Removable volumes sit at most a few levels under the mount bases.
const treeScanDepth = 3

// ResolverCache memoizes resolution results for the process lifetime:
// tree URI → filesystem prefix, and filesystem path → document URI.
// Unbounded; emptied only by Invalidate or process restart.
//
// Guarded by a mutex because the mount watcher invalidates it from outside
// the engine's single worker.
type ResolverCache struct {
	mu        sync.RWMutex
	treeRoots map[string]string
	docURIs   map[string]string
}

// NewResolverCache creates an empty cache.
func NewResolverCache() *ResolverCache {
	return &ResolverCache{
		treeRoots: make(map[string]string),
		docURIs:   make(map[string]string),
	}
}

// Invalidate empties the cache. Called on mount events; safe to call from
// any goroutine.
func (c *ResolverCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.treeRoots = make(map[string]string)
	c.docURIs = make(map[string]string)
}

func (c *ResolverCache) treeRoot(treeURI string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.treeRoots[treeURI]
	return p, ok
}

func (c *ResolverCache) putTreeRoot(treeURI, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.treeRoots[treeURI] = path
}

func (c *ResolverCache) docURI(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.docURIs[path]
	return u, ok
}

func (c *ResolverCache) putDocURI(path, uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docURIs[path] = uri
}

// ResolverStats is an optional sink for resolution outcomes.
type ResolverStats interface {
	ResolveHit()
	ResolveMiss()
}

// Resolver decides whether a bare filesystem path is governed by a
// persisted tree grant and, when it is, maps it to the equivalent
// document URI. Resolution never mutates grants and never writes to the
// filesystem; repeated resolution of the same input is served from cache.
type Resolver struct {
	grants GrantRegistry
	cache  *ResolverCache
	bases  []string // candidate mount bases for the root heuristic
	stats  ResolverStats
	log    *logging.Logger
}

// NewResolver creates a resolver over the given grant registry, cache,
// and candidate mount bases.
func NewResolver(grants GrantRegistry, cache *ResolverCache, bases []string, log *logging.Logger) *Resolver {
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{grants: grants, cache: cache, bases: bases, log: log}
}

// SetStats attaches an outcome sink. Must be called before the resolver
// is in use.
func (r *Resolver) SetStats(stats ResolverStats) { r.stats = stats }

// Cache exposes the resolver's cache for invalidation hooks.
func (r *Resolver) Cache() *ResolverCache { return r.cache }

// ResolveTreeRoot maps a tree URI to its filesystem path prefix. The
// mapping is a bounded heuristic: the tree's display name is searched for
// among directories up to treeScanDepth below each candidate base, first
// match wins. A miss is not memoized — a transient unmount may explain
// it, so a later call retries. Returns ("", false) when the tree cannot
// be resolved; that is a "can't help", not an error.
func (r *Resolver) ResolveTreeRoot(ctx context.Context, treeURI string) (string, bool) {
	if p, ok := r.cache.treeRoot(treeURI); ok {
		return p, true
	}

	doc, err := r.grants.Document(ctx, treeURI)
	if err != nil || doc == nil {
		return "", false
	}
	name := doc.Name()
	if name == "" {
		return "", false
	}

	for _, base := range r.bases {
		if p, ok := findDirNamed(base, name, treeScanDepth); ok {
			r.cache.putTreeRoot(treeURI, p)
			r.log.Debug("tree root resolved",
				zap.String("tree", treeURI), zap.String("path", p))
			return p, true
		}
	}
	return "", false
}

// ResolveFileInTree maps a filesystem path to the document URI of the
// matching file inside a granted tree, or ("", false) when no grant
// covers it. The caller is expected to fall back to another strategy on a
// miss. The first tree that resolves wins; grants carry no priority
// beyond enumeration order.
func (r *Resolver) ResolveFileInTree(ctx context.Context, path string) (string, bool) {
	if u, ok := r.cache.docURI(path); ok {
		r.hit()
		return u, true
	}

	grants, err := r.grants.PersistedGrants(ctx)
	if err != nil {
		r.log.Warn("grant enumeration failed", zap.Error(err))
		r.miss()
		return "", false
	}

	for _, g := range grants {
		if !g.Read || !g.IsTree() {
			continue
		}
		root, ok := r.ResolveTreeRoot(ctx, g.TreeURI)
		if !ok || !coveredBy(path, root) {
			continue
		}
		remainder := strings.TrimPrefix(strings.TrimPrefix(path, root), string(os.PathSeparator))
		if uri, ok := r.walkSegments(ctx, g.TreeURI, remainder); ok {
			r.cache.putDocURI(path, uri)
			r.hit()
			return uri, true
		}
	}
	r.miss()
	return "", false
}

func (r *Resolver) hit() {
	if r.stats != nil {
		r.stats.ResolveHit()
	}
}

func (r *Resolver) miss() {
	if r.stats != nil {
		r.stats.ResolveMiss()
	}
}

// walkSegments descends the document tree one path segment at a time.
// Any missing segment fails the whole walk; the final node must be a
// file, not a directory.
func (r *Resolver) walkSegments(ctx context.Context, treeURI, remainder string) (string, bool) {
	node, err := r.grants.Document(ctx, treeURI)
	if err != nil || node == nil {
		return "", false
	}
	if remainder == "" {
		return "", false // the tree root itself is a directory
	}
	for _, segment := range strings.Split(remainder, string(os.PathSeparator)) {
		if segment == "" {
			continue
		}
		child, err := node.FindChild(ctx, segment)
		if err != nil || child == nil {
			return "", false
		}
		node = child
	}
	if node.IsDir() {
		return "", false
	}
	return node.URI(), true
}

// coveredBy reports whether path lies at or under root. Plain prefix
// matching would let /a/bc pass for root /a/b.
func coveredBy(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}

// findDirNamed searches base for the first directory entry with the given
// name, descending at most maxDepth levels. Unreadable directories are
// skipped silently.
func findDirNamed(base, name string, maxDepth int) (string, bool) {
	type frame struct {
		dir   string
		depth int
	}
	stack := []frame{{dir: base, depth: 0}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := os.ReadDir(top.dir)
		if err != nil {
			continue
		}
		for _, child := range children {
			if !child.IsDir() {
				continue
			}
			p := filepath.Join(top.dir, child.Name())
			if child.Name() == name {
				return p, true
			}
			if top.depth+1 < maxDepth {
				stack = append(stack, frame{dir: p, depth: top.depth + 1})
			}
		}
	}
	return "", false
}
