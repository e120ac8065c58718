package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *fakeDoc {
	return newFakeTree("Documents", "content://provider/tree/0000",
		fakeFile("report.pdf", 100, "application/pdf"),
		fakeFile("notes.txt", 10, "text/plain"),
		fakeDir("archive",
			fakeFile("old.pdf", 50, "application/pdf"),
			fakeDir("deeper",
				fakeFile("ancient.pdf", 25, "application/pdf"),
			),
		),
	)
}

func TestSafListNilRootIsEmpty(t *testing.T) {
	w := NewSafWalker(nil)
	assert.Empty(t, w.List(context.Background(), nil, nil))
}

func TestSafListEntries(t *testing.T) {
	w := NewSafWalker(nil)
	entries := w.List(context.Background(), testTree(), nil)

	assert.Equal(t, []string{"archive", "notes.txt", "report.pdf"}, names(entries))
	for _, e := range entries {
		assert.Equal(t, ModeSaf, e.Mode())
		assert.NotEmpty(t, e.ID())
	}
}

func TestSafListAppliesFilter(t *testing.T) {
	w := NewSafWalker(nil)
	entries := w.List(context.Background(), testTree(), &Filter{MIMETypes: []string{"application/pdf"}})

	// archive has no mime, so the mime criteria are skipped for it
	assert.Equal(t, []string{"archive", "report.pdf"}, names(entries))
}

func TestSafTraverseNilRootIsEmpty(t *testing.T) {
	w := NewSafWalker(nil)
	assert.Empty(t, w.Traverse(context.Background(), nil, 5, nil))
}

func TestSafTraverseDepthZeroIsRootOnly(t *testing.T) {
	w := NewSafWalker(nil)
	entries := w.Traverse(context.Background(), testTree(), 0, nil)

	require.Len(t, entries, 1)
	assert.Equal(t, "Documents", entries[0].Name)
}

func TestSafTraverseDepthBound(t *testing.T) {
	w := NewSafWalker(nil)
	entries := w.Traverse(context.Background(), testTree(), 2, nil)

	// depth 3 node excluded
	assert.NotContains(t, names(entries), "ancient.pdf")
	assert.Contains(t, names(entries), "old.pdf")
}

func TestSafTraverseFilterDoesNotPrune(t *testing.T) {
	w := NewSafWalker(nil)
	entries := w.Traverse(context.Background(), testTree(), -1, &Filter{Extensions: []string{"pdf"}})

	// archive and deeper are excluded from output but still descended into
	assert.Equal(t, []string{"ancient.pdf", "old.pdf", "report.pdf"}, names(entries))
}

func TestSafTraverseDirectoriesHaveZeroSize(t *testing.T) {
	w := NewSafWalker(nil)
	for _, e := range w.Traverse(context.Background(), testTree(), -1, nil) {
		if e.IsDir {
			assert.Zero(t, e.Size)
		}
	}
}
