package storage

import (
	"context"
	"os"
	"strings"
	"sync/atomic"
)

// fakeDoc is an in-memory Document tree node.
type fakeDoc struct {
	name     string
	uri      string
	mime     string
	size     int64
	modified int64
	dir      bool
	children []*fakeDoc

	// shared across the whole tree; counts FindChild calls for cache
	// assertions
	findCalls *atomic.Int64
}

func newFakeTree(name, uri string, children ...*fakeDoc) *fakeDoc {
	root := &fakeDoc{name: name, uri: uri, dir: true, children: children, findCalls: &atomic.Int64{}}
	root.propagate()
	return root
}

func fakeDir(name string, children ...*fakeDoc) *fakeDoc {
	return &fakeDoc{name: name, dir: true, children: children}
}

func fakeFile(name string, size int64, mime string) *fakeDoc {
	return &fakeDoc{name: name, size: size, mime: mime, modified: 1700000000000}
}

// propagate assigns URIs under the root's prefix and shares the call
// counter, so trees can be declared tersely.
func (d *fakeDoc) propagate() {
	for _, c := range d.children {
		if c.uri == "" {
			c.uri = d.uri + "/" + c.name
		}
		c.findCalls = d.findCalls
		c.propagate()
	}
}

func (d *fakeDoc) URI() string         { return d.uri }
func (d *fakeDoc) Name() string        { return d.name }
func (d *fakeDoc) MIME() string        { return d.mime }
func (d *fakeDoc) Length() int64       { return d.size }
func (d *fakeDoc) LastModified() int64 { return d.modified }
func (d *fakeDoc) IsDir() bool         { return d.dir }

func (d *fakeDoc) Children(context.Context) ([]Document, error) {
	out := make([]Document, 0, len(d.children))
	for _, c := range d.children {
		out = append(out, c)
	}
	return out, nil
}

func (d *fakeDoc) FindChild(_ context.Context, name string) (Document, error) {
	if d.findCalls != nil {
		d.findCalls.Add(1)
	}
	for _, c := range d.children {
		if c.name == name {
			return c, nil
		}
	}
	return nil, nil
}

// fakeGrants is an in-memory GrantRegistry over fakeDoc trees.
type fakeGrants struct {
	grants      []Grant
	trees       map[string]*fakeDoc
	rejectWrite bool
}

func newFakeGrants(trees ...*fakeDoc) *fakeGrants {
	g := &fakeGrants{trees: map[string]*fakeDoc{}}
	for _, t := range trees {
		g.trees[t.uri] = t
		g.grants = append(g.grants, Grant{TreeURI: t.uri, Read: true, Write: true})
	}
	return g
}

func (g *fakeGrants) PersistedGrants(context.Context) ([]Grant, error) {
	return g.grants, nil
}

func (g *fakeGrants) Persist(_ context.Context, treeURI string, write bool) (Grant, error) {
	if write && g.rejectWrite {
		return Grant{}, os.ErrPermission
	}
	grant := Grant{TreeURI: treeURI, Read: true, Write: write}
	g.grants = append(g.grants, grant)
	return grant, nil
}

func (g *fakeGrants) Document(_ context.Context, uri string) (Document, error) {
	if t, ok := g.trees[uri]; ok {
		return t, nil
	}
	// Document URIs under a known tree resolve by walking the fake tree.
	for treeURI, t := range g.trees {
		if rest, ok := strings.CutPrefix(uri, treeURI+"/"); ok {
			if d := t.lookup(rest); d != nil {
				return d, nil
			}
		}
	}
	return nil, nil
}

func (d *fakeDoc) lookup(rel string) *fakeDoc {
	node := d
	for _, seg := range strings.Split(rel, "/") {
		var next *fakeDoc
		for _, c := range node.children {
			if c.name == seg {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}
