package storage

import (
	"errors"
	"strings"
)

// Mode discriminates which access model backs a volume or entry.
type Mode string

const (
	ModeNative  Mode = "native"
	ModeSaf     Mode = "saf"
	ModeUnknown Mode = "unknown"
)

// Location identifies where an entry or volume lives. Exactly two
// implementations exist: PathLocation for native filesystem paths and
// URILocation for document URIs. The closed set replaces the old
// "exactly one of path/uri must be set" runtime check with a type-level
// guarantee.
type Location interface {
	Mode() Mode
	String() string
	sealed()
}

// PathLocation is a conventional filesystem path.
type PathLocation string

func (p PathLocation) Mode() Mode     { return ModeNative }
func (p PathLocation) String() string { return string(p) }
func (p PathLocation) sealed()        {}

// URILocation is an opaque document or tree URI.
type URILocation string

func (u URILocation) Mode() Mode     { return ModeSaf }
func (u URILocation) String() string { return string(u) }
func (u URILocation) sealed()        {}

// ErrNoLocation reports a constructed value missing its location.
// This is a contract violation, not an expected runtime condition.
var ErrNoLocation = errors.New("storage: location must be set")

// Entry is a single file or directory produced by listing or traversal.
// Entries are immutable values; they are never persisted.
type Entry struct {
	Name     string
	Location Location
	IsDir    bool
	Size     int64  // bytes, 0 for directories
	Modified int64  // epoch millis
	MIME     string // empty when unknown
}

// NewNativeEntry builds an Entry backed by a filesystem path.
func NewNativeEntry(name, path string, isDir bool, size, modified int64, mime string) Entry {
	if isDir {
		size = 0
	}
	return Entry{Name: name, Location: PathLocation(path), IsDir: isDir, Size: size, Modified: modified, MIME: mime}
}

// NewSafEntry builds an Entry backed by a document URI.
func NewSafEntry(name, uri string, isDir bool, size, modified int64, mime string) Entry {
	if isDir {
		size = 0
	}
	return Entry{Name: name, Location: URILocation(uri), IsDir: isDir, Size: size, Modified: modified, MIME: mime}
}

// Validate fails fast on contract violations.
func (e Entry) Validate() error {
	if e.Location == nil || e.Location.String() == "" {
		return ErrNoLocation
	}
	return nil
}

// ID returns the stable identifier: the URI when the entry is
// document-backed, the path otherwise.
func (e Entry) ID() string {
	if e.Location == nil {
		return ""
	}
	return e.Location.String()
}

// Mode reports which access model backs the entry.
func (e Entry) Mode() Mode {
	if e.Location == nil {
		return ModeUnknown
	}
	return e.Location.Mode()
}

// Volume describes one discovered storage root. Volumes are constructed
// fresh on every enumeration call and never cached: a volume may mount or
// unmount between calls.
type Volume struct {
	Name     string
	Location Location
	Total    uint64 // bytes, native volumes only
	Free     uint64
	Used     uint64
	Writable bool
}

// Validate fails fast on contract violations.
func (v Volume) Validate() error {
	if v.Location == nil || v.Location.String() == "" {
		return ErrNoLocation
	}
	return nil
}

// Mode reports which access model backs the volume.
func (v Volume) Mode() Mode {
	if v.Location == nil {
		return ModeUnknown
	}
	return v.Location.Mode()
}

// Grant is one persisted (tree URI, permission) pair. The current grant
// set is ground truth owned by the platform; it is re-enumerated on every
// resolution and never cached across calls.
type Grant struct {
	TreeURI string
	Read    bool
	Write   bool
}

// IsTree reports whether the grant's URI addresses a whole subtree rather
// than a single document. Tree URIs carry a "/tree/" segment, document
// URIs a "/document/" segment.
func (g Grant) IsTree() bool {
	return strings.Contains(g.TreeURI, "/tree/")
}
