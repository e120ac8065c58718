package providers

import (
	"context"
	"fmt"

	"github.com/saftree/storagebridge/internal/storage"
	"github.com/saftree/storagebridge/internal/types"
)

// Storage exposes the traversal engine as a service provider. Every tool
// is dispatched through the engine's scheduler, so all storage I/O runs
// on the single worker regardless of how many callers execute tools
// concurrently.
type Storage struct {
	enum     *storage.Enumerator
	native   *storage.NativeWalker
	saf      *storage.SafWalker
	resolver *storage.Resolver
	grants   storage.GrantRegistry
	sched    *storage.Scheduler
}

// NewStorage creates the storage provider over an assembled engine.
func NewStorage(enum *storage.Enumerator, native *storage.NativeWalker, saf *storage.SafWalker,
	resolver *storage.Resolver, grants storage.GrantRegistry, sched *storage.Scheduler) *Storage {
	return &Storage{
		enum:     enum,
		native:   native,
		saf:      saf,
		resolver: resolver,
		grants:   grants,
		sched:    sched,
	}
}

// Definition returns service metadata
func (s *Storage) Definition() types.Service {
	return types.Service{
		ID:          "storage",
		Name:        "Storage Service",
		Description: "Unified listing, traversal, and path resolution over native and document-tree storage",
		Category:    types.CategoryStorage,
		Capabilities: []string{
			"roots",
			"list",
			"traverse",
			"resolve",
			"persist",
		},
		Tools: []types.Tool{
			{
				ID:          "storage.roots",
				Name:        "List Roots",
				Description: "Enumerate storage volumes and granted tree roots",
				Parameters: []types.Parameter{
					{Name: "include_saf", Type: "boolean", Description: "Include granted tree roots", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "storage.list",
				Name:        "List Directory",
				Description: "List one directory level, native or document-backed",
				Parameters: []types.Parameter{
					{Name: "target", Type: "string", Description: "Directory path or tree/document URI", Required: true},
					{Name: "is_saf", Type: "boolean", Description: "Target is a document URI", Required: false},
					{Name: "filter", Type: "object", Description: "Optional filter specification", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "storage.traverse",
				Name:        "Traverse",
				Description: "Depth-bounded recursive traversal with filtering",
				Parameters: []types.Parameter{
					{Name: "target", Type: "string", Description: "Root path or tree/document URI", Required: true},
					{Name: "is_saf", Type: "boolean", Description: "Target is a document URI", Required: false},
					{Name: "max_depth", Type: "number", Description: "Depth bound, 0 visits only the root, negative is unbounded", Required: false},
					{Name: "filter", Type: "object", Description: "Optional filter specification", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "storage.resolve",
				Name:        "Resolve For Open",
				Description: "Map a filesystem path to a granted document URI when one covers it",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Filesystem path", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "storage.persist",
				Name:        "Persist Grant",
				Description: "Persist a tree grant, degrading to read-only on rejection",
				Parameters: []types.Parameter{
					{Name: "tree_uri", Type: "string", Description: "Tree URI to persist", Required: true},
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs a storage tool
func (s *Storage) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "storage.roots":
		return s.roots(ctx, params)
	case "storage.list":
		return s.list(ctx, params)
	case "storage.traverse":
		return s.traverse(ctx, params)
	case "storage.resolve":
		return s.resolve(ctx, params)
	case "storage.persist":
		return s.persist(ctx, params)
	default:
		return Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (s *Storage) roots(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	includeSaf, _ := params["include_saf"].(bool)

	v, err := s.sched.Wait("roots", func() (interface{}, error) {
		if includeSaf {
			return s.enum.AllRoots(ctx), nil
		}
		return s.enum.NativeRoots(ctx), nil
	})
	if err != nil {
		return Failure(fmt.Sprintf("enumeration failed: %v", err))
	}

	volumes := v.([]storage.Volume)
	out := make([]map[string]interface{}, 0, len(volumes))
	for _, vol := range volumes {
		out = append(out, volumeToMap(vol))
	}
	return Success(map[string]interface{}{"roots": out, "count": len(out)})
}

func (s *Storage) list(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	target, ok := params["target"].(string)
	if !ok || target == "" {
		return Failure("target parameter required")
	}
	isSaf, _ := params["is_saf"].(bool)
	filter := parseFilter(params["filter"])

	v, err := s.sched.Wait("list", func() (interface{}, error) {
		if !isSaf {
			return s.native.List(target, filter), nil
		}
		doc, err := s.grants.Document(ctx, target)
		if err != nil {
			return nil, err
		}
		return s.saf.List(ctx, doc, filter), nil
	})
	if err != nil {
		return Failure(fmt.Sprintf("list failed: %v", err))
	}
	return entriesResult(target, v.([]storage.Entry))
}

func (s *Storage) traverse(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	target, ok := params["target"].(string)
	if !ok || target == "" {
		return Failure("target parameter required")
	}
	isSaf, _ := params["is_saf"].(bool)
	maxDepth := -1
	if d, ok := params["max_depth"].(float64); ok {
		maxDepth = int(d)
	}
	filter := parseFilter(params["filter"])

	v, err := s.sched.Wait("traverse", func() (interface{}, error) {
		if !isSaf {
			return s.native.Traverse(target, maxDepth, filter), nil
		}
		doc, err := s.grants.Document(ctx, target)
		if err != nil {
			return nil, err
		}
		return s.saf.Traverse(ctx, doc, maxDepth, filter), nil
	})
	if err != nil {
		return Failure(fmt.Sprintf("traverse failed: %v", err))
	}
	return entriesResult(target, v.([]storage.Entry))
}

func (s *Storage) resolve(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return Failure("path parameter required")
	}

	v, err := s.sched.Wait("resolve", func() (interface{}, error) {
		uri, ok := s.resolver.ResolveFileInTree(ctx, path)
		if !ok {
			return nil, nil
		}
		return uri, nil
	})
	if err != nil {
		return Failure(fmt.Sprintf("resolve failed: %v", err))
	}
	if v == nil {
		// No grant covers the path; the caller falls back to direct access.
		return Success(map[string]interface{}{"path": path, "resolved": false})
	}
	return Success(map[string]interface{}{"path": path, "resolved": true, "uri": v.(string)})
}

func (s *Storage) persist(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	treeURI, ok := params["tree_uri"].(string)
	if !ok || treeURI == "" {
		return Failure("tree_uri parameter required")
	}

	v, err := s.sched.Wait("persist", func() (interface{}, error) {
		return storage.PersistGrant(ctx, s.grants, treeURI)
	})
	if err != nil {
		return Failure(fmt.Sprintf("persist failed: %v", err))
	}
	g := v.(storage.Grant)
	return Success(map[string]interface{}{
		"tree_uri": g.TreeURI,
		"read":     g.Read,
		"write":    g.Write,
	})
}

func entriesResult(target string, entries []storage.Entry) (*types.Result, error) {
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryToMap(e))
	}
	return Success(map[string]interface{}{"target": target, "entries": out, "count": len(out)})
}

func entryToMap(e storage.Entry) map[string]interface{} {
	m := map[string]interface{}{
		"id":       e.ID(),
		"name":     e.Name,
		"is_dir":   e.IsDir,
		"size":     e.Size,
		"modified": e.Modified,
		"mode":     string(e.Mode()),
	}
	switch loc := e.Location.(type) {
	case storage.PathLocation:
		m["path"] = string(loc)
	case storage.URILocation:
		m["uri"] = string(loc)
	}
	if e.MIME != "" {
		m["mime"] = e.MIME
	}
	return m
}

func volumeToMap(v storage.Volume) map[string]interface{} {
	m := map[string]interface{}{
		"name":     v.Name,
		"mode":     string(v.Mode()),
		"writable": v.Writable,
	}
	switch loc := v.Location.(type) {
	case storage.PathLocation:
		m["path"] = string(loc)
		m["total"] = v.Total
		m["free"] = v.Free
		m["used"] = v.Used
	case storage.URILocation:
		m["uri"] = string(loc)
	}
	return m
}
