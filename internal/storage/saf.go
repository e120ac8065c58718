package storage

import (
	"context"

	"github.com/saftree/storagebridge/internal/logging"
	"go.uber.org/zap"
)

// SafWalker lists and traverses provider-backed document trees with the
// same semantics as NativeWalker, producing URI-tagged entries. A nil or
// unresolvable root document yields an empty result rather than an error:
// a revoked tree is an expected outcome, not a failure.
type SafWalker struct {
	log *logging.Logger
}

// NewSafWalker creates a walker. A nil logger is replaced by a no-op.
func NewSafWalker(log *logging.Logger) *SafWalker {
	if log == nil {
		log = logging.Nop()
	}
	return &SafWalker{log: log}
}

// List returns the direct children of doc that pass the filter.
func (w *SafWalker) List(ctx context.Context, doc Document, filter *Filter) []Entry {
	entries := []Entry{}
	if doc == nil {
		return entries
	}
	children, err := doc.Children(ctx)
	if err != nil {
		w.log.Debug("document listing skipped", zap.String("uri", doc.URI()), zap.Error(err))
		return entries
	}
	for _, child := range children {
		if e, ok := entryForDocument(child, filter); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// Traverse walks the document tree depth-first with an explicit work
// stack, honoring the same depth bound and report-only filtering as the
// native walker. Children the provider fails to enumerate are simply not
// descended into.
func (w *SafWalker) Traverse(ctx context.Context, doc Document, maxDepth int, filter *Filter) []Entry {
	entries := []Entry{}
	if doc == nil {
		return entries
	}

	type frame struct {
		doc   Document
		depth int
	}
	stack := []frame{{doc: doc, depth: 0}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if e, ok := entryForDocument(top.doc, filter); ok {
			entries = append(entries, e)
		}
		if !top.doc.IsDir() || (maxDepth >= 0 && top.depth >= maxDepth) {
			continue
		}

		children, err := top.doc.Children(ctx)
		if err != nil {
			w.log.Debug("descent skipped", zap.String("uri", top.doc.URI()), zap.Error(err))
			continue
		}
		// Reverse push keeps enumeration order in the output.
		for i := len(children) - 1; i >= 0; i-- {
			if children[i] == nil {
				continue
			}
			stack = append(stack, frame{doc: children[i], depth: top.depth + 1})
		}
	}
	return entries
}

func entryForDocument(doc Document, filter *Filter) (Entry, bool) {
	name := doc.Name()
	size := int64(0)
	mime := ""
	if !doc.IsDir() {
		size = doc.Length()
		mime = doc.MIME()
		if mime == "" {
			mime = MIMEByName(name)
		}
	}
	modified := doc.LastModified()

	if !filter.Matches(size, modified, name, mime) {
		return Entry{}, false
	}
	return NewSafEntry(name, doc.URI(), doc.IsDir(), size, modified, mime), true
}
