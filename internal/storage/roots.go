package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/saftree/storagebridge/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// volumeStats reads capacity for one mounted directory. Swappable in
// tests, where real statfs numbers are not controllable.
type volumeStats func(path string) (total, free uint64, err error)

func statfsVolume(path string) (uint64, uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, st.Bavail * bsize, nil
}

// Enumerator discovers native volumes and granted tree roots. Volumes are
// rebuilt fresh on every call — two calls may disagree when media mounts
// or unmounts in between, which is the intended behavior, not a caching
// defect.
type Enumerator struct {
	source  VolumeSource // nil means legacy base scan
	grants  GrantRegistry
	bases   []string
	primary string
	stats   volumeStats
	log     *logging.Logger
}

// NewEnumerator creates an enumerator. source may be nil; then volumes
// are discovered by scanning bases, with primary reported first.
func NewEnumerator(source VolumeSource, grants GrantRegistry, bases []string, primary string, log *logging.Logger) *Enumerator {
	if log == nil {
		log = logging.Nop()
	}
	return &Enumerator{
		source:  source,
		grants:  grants,
		bases:   bases,
		primary: primary,
		stats:   statfsVolume,
		log:     log,
	}
}

// NativeRoots enumerates mounted native volumes. A volume whose stats
// cannot be read (unmounted, permission denied, dangling symlink) is
// skipped silently; one bad volume never fails the enumeration.
func (e *Enumerator) NativeRoots(ctx context.Context) []Volume {
	if e.source != nil {
		return e.structuredRoots(ctx)
	}
	return e.scannedRoots()
}

// AllRoots returns native volumes plus one volume per granted tree.
func (e *Enumerator) AllRoots(ctx context.Context) []Volume {
	return append(e.NativeRoots(ctx), e.SafRoots(ctx)...)
}

// SafRoots derives one volume per persisted tree grant, named from the
// tree's display name with a generic fallback, writable when the grant
// carries write permission.
func (e *Enumerator) SafRoots(ctx context.Context) []Volume {
	roots := []Volume{}
	grants, err := e.grants.PersistedGrants(ctx)
	if err != nil {
		e.log.Warn("grant enumeration failed", zap.Error(err))
		return roots
	}
	for _, g := range grants {
		if !g.IsTree() {
			continue
		}
		name := "Granted folder"
		if doc, err := e.grants.Document(ctx, g.TreeURI); err == nil && doc != nil && doc.Name() != "" {
			name = doc.Name()
		}
		roots = append(roots, Volume{
			Name:     name,
			Location: URILocation(g.TreeURI),
			Writable: g.Write,
		})
	}
	return roots
}

func (e *Enumerator) structuredRoots(ctx context.Context) []Volume {
	roots := []Volume{}
	infos, err := e.source.Volumes(ctx)
	if err != nil {
		e.log.Warn("volume source failed", zap.Error(err))
		return roots
	}
	for _, info := range infos {
		if v, ok := e.volumeAt(info.Description, info.MountPath); ok {
			roots = append(roots, v)
		}
	}
	return roots
}

// scannedRoots is the legacy path: the primary volume first, then every
// directory directly under the mount bases that is not a duplicate or an
// emulated alias of primary.
func (e *Enumerator) scannedRoots() []Volume {
	roots := []Volume{}
	seen := map[string]bool{}

	if e.primary != "" {
		if v, ok := e.volumeAt(filepath.Base(e.primary), e.primary); ok {
			roots = append(roots, v)
			seen[canonical(e.primary)] = true
		}
	}

	for _, base := range e.bases {
		children, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, child := range children {
			name := child.Name()
			if isPrimaryAlias(name) {
				continue
			}
			p := filepath.Join(base, name)
			if !child.IsDir() {
				// symlinked mount aliases are followed, but only when
				// the target is itself a directory
				if child.Type()&os.ModeSymlink == 0 {
					continue
				}
				if info, err := os.Stat(p); err != nil || !info.IsDir() {
					continue
				}
			}
			c := canonical(p)
			if seen[c] {
				continue
			}
			if v, ok := e.volumeAt(name, p); ok {
				roots = append(roots, v)
				seen[c] = true
			}
		}
	}
	return roots
}

// volumeAt builds one native Volume, or reports false when the mount
// point's stats cannot be read.
func (e *Enumerator) volumeAt(name, path string) (Volume, bool) {
	total, free, err := e.stats(path)
	if err != nil {
		e.log.Debug("volume skipped", zap.String("path", path), zap.Error(err))
		return Volume{}, false
	}
	return Volume{
		Name:     name,
		Location: PathLocation(path),
		Total:    total,
		Free:     free,
		Used:     total - free,
		Writable: unix.Access(path, unix.W_OK) == nil,
	}, true
}

// isPrimaryAlias recognizes mount-base names that shadow primary storage.
func isPrimaryAlias(name string) bool {
	switch name {
	case "emulated", "self", "sdcard0", "legacy":
		return true
	}
	return false
}

// canonical resolves symlinked mount aliases so the same volume is not
// reported twice.
func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}
