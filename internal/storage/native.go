package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/saftree/storagebridge/internal/logging"
	"go.uber.org/zap"
)

// NativeWalker lists and traverses filesystem directories. Missing or
// vanished nodes are skipped, never fatal: directory trees race with
// concurrent deletion and unmounts.
type NativeWalker struct {
	log *logging.Logger
}

// NewNativeWalker creates a walker. A nil logger is replaced by a no-op.
func NewNativeWalker(log *logging.Logger) *NativeWalker {
	if log == nil {
		log = logging.Nop()
	}
	return &NativeWalker{log: log}
}

// List returns the direct children of dir that pass the filter. A missing
// target or a non-directory yields an empty result.
func (w *NativeWalker) List(dir string, filter *Filter) []Entry {
	entries := []Entry{}
	children, err := os.ReadDir(dir)
	if err != nil {
		w.log.Debug("list skipped", zap.String("dir", dir), zap.Error(err))
		return entries
	}
	for _, child := range children {
		if e, ok := w.entryFor(filepath.Join(dir, child.Name()), child, filter); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// Traverse walks root depth-first and returns every node within maxDepth
// that passes the filter. The root itself is depth 0, so maxDepth 0 visits
// only the root; a negative maxDepth removes the bound. Filtering controls
// reporting, not pruning: an excluded directory is still descended into.
// Child order follows the underlying enumeration; no sort is guaranteed.
func (w *NativeWalker) Traverse(root string, maxDepth int, filter *Filter) []Entry {
	entries := []Entry{}
	if _, err := os.Lstat(root); err != nil {
		return entries
	}

	var mu sync.Mutex
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // vanished mid-walk
		}
		depth := 0
		if path != root {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil
			}
			depth = len(strings.Split(rel, string(os.PathSeparator)))
		}
		if maxDepth >= 0 && depth > maxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if e, ok := w.entryFor(path, d, filter); ok {
			mu.Lock()
			entries = append(entries, e)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		w.log.Warn("traverse aborted", zap.String("root", root), zap.Error(err))
	}
	return entries
}

// entryFor stats one node and applies the filter. A node that disappears
// between enumeration and stat is dropped.
func (w *NativeWalker) entryFor(path string, d os.DirEntry, filter *Filter) (Entry, bool) {
	info, err := d.Info()
	if err != nil {
		return Entry{}, false
	}

	name := d.Name()
	size := int64(0)
	mime := ""
	if !d.IsDir() {
		size = info.Size()
		mime = DetectPathMIME(path, name)
	}
	modified := info.ModTime().UnixMilli()

	if !filter.Matches(size, modified, name, mime) {
		return Entry{}, false
	}
	return NewNativeEntry(name, path, d.IsDir(), size, modified, mime), true
}
