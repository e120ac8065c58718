package storage

import (
	"context"
	"errors"
	"os"
)

// Document is one node of a provider-backed tree. Handles are resolved
// through the GrantRegistry; calls may cross a process boundary and can
// be slow, so all methods take a context.
type Document interface {
	// URI returns the opaque identifier for this node.
	URI() string
	// Name returns the display name, empty when the provider has none.
	Name() string
	// MIME returns the declared content type, empty when unknown.
	MIME() string
	// Length returns the byte length, 0 for directories.
	Length() int64
	// LastModified returns the modification time in epoch millis.
	LastModified() int64
	// IsDir reports whether the node is a directory.
	IsDir() bool
	// Children lists the node's direct children.
	Children(ctx context.Context) ([]Document, error)
	// FindChild returns the direct child with the given display name,
	// or (nil, nil) when no such child exists.
	FindChild(ctx context.Context, name string) (Document, error)
}

// GrantRegistry exposes the platform's persisted URI permissions.
type GrantRegistry interface {
	// PersistedGrants enumerates the current grant set.
	PersistedGrants(ctx context.Context) ([]Grant, error)
	// Persist takes a grant for the given tree. A write request may be
	// rejected by the platform; callers wanting graceful degradation use
	// PersistGrant.
	Persist(ctx context.Context, treeURI string, write bool) (Grant, error)
	// Document resolves a tree or document URI to a handle, or (nil, nil)
	// when the URI is invalid or no longer granted.
	Document(ctx context.Context, uri string) (Document, error)
}

// PersistGrant requests read+write and degrades to read-only when the
// platform rejects the write half (legacy provider implementations throw
// on write persistence). Only a read-only rejection is a real failure.
func PersistGrant(ctx context.Context, reg GrantRegistry, treeURI string) (Grant, error) {
	g, err := reg.Persist(ctx, treeURI, true)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, os.ErrPermission) {
		return Grant{}, err
	}
	return reg.Persist(ctx, treeURI, false)
}

// VolumeInfo is one row of the platform's structured volume list.
type VolumeInfo struct {
	Description string
	MountPath   string
	Primary     bool
	Emulated    bool
}

// VolumeSource enumerates mounted storage volumes. A nil source makes the
// Enumerator fall back to scanning well-known mount bases.
type VolumeSource interface {
	Volumes(ctx context.Context) ([]VolumeInfo, error)
}

// NoGrants is a GrantRegistry for hosts without a document provider:
// it reports no grants and resolves nothing.
type NoGrants struct{}

func (NoGrants) PersistedGrants(context.Context) ([]Grant, error) { return nil, nil }

func (NoGrants) Persist(_ context.Context, _ string, _ bool) (Grant, error) {
	return Grant{}, os.ErrPermission
}

func (NoGrants) Document(context.Context, string) (Document, error) { return nil, nil }
