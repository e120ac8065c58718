package storage

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter narrows listing and traversal output. Every field is optional;
// a nil *Filter matches everything. Supplied criteria combine with AND.
//
// Filtering controls reporting only: a directory excluded by a filter is
// still descended into during traversal, so its matching children are
// found.
type Filter struct {
	MinSize        *int64
	MaxSize        *int64
	ModifiedAfter  *int64 // epoch millis, inclusive
	ModifiedBefore *int64 // epoch millis, inclusive
	Extensions     []string
	MIMETypes      []string
	NameGlob       string // doublestar pattern matched against the name
}

// Matches evaluates the filter against one entry's attributes. Pure and
// total: no I/O, no side effects. An unknown mime (empty string) never
// rejects — mime criteria are simply skipped for it.
func (f *Filter) Matches(size, modified int64, name, mime string) bool {
	if f == nil {
		return true
	}
	if f.MinSize != nil && size < *f.MinSize {
		return false
	}
	if f.MaxSize != nil && size > *f.MaxSize {
		return false
	}
	if f.ModifiedAfter != nil && modified < *f.ModifiedAfter {
		return false
	}
	if f.ModifiedBefore != nil && modified > *f.ModifiedBefore {
		return false
	}
	if len(f.Extensions) > 0 && !f.matchesExtension(name) {
		return false
	}
	if len(f.MIMETypes) > 0 && mime != "" && !f.matchesMIME(mime) {
		return false
	}
	if f.NameGlob != "" {
		ok, err := doublestar.Match(f.NameGlob, name)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// matchesExtension compares the substring after the last dot,
// case-insensitively. Names without a dot have the empty extension, so an
// active extension filter rejects directories too; callers wanting
// directories through must omit the extensions clause.
func (f *Filter) matchesExtension(name string) bool {
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = strings.ToLower(name[i+1:])
	}
	for _, want := range f.Extensions {
		if ext == strings.ToLower(strings.TrimPrefix(want, ".")) {
			return true
		}
	}
	return false
}

// matchesMIME accepts an exact member or a "prefix/*" wildcard whose
// prefix equals the mime's part before the slash.
func (f *Filter) matchesMIME(mime string) bool {
	prefix := mime
	if i := strings.Index(mime, "/"); i >= 0 {
		prefix = mime[:i]
	}
	for _, want := range f.MIMETypes {
		if want == mime {
			return true
		}
		if p, ok := strings.CutSuffix(want, "/*"); ok && p == prefix {
			return true
		}
	}
	return false
}
