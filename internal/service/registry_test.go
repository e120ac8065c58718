package service

import (
	"context"
	"testing"

	"github.com/saftree/storagebridge/internal/types"
)

type stubProvider struct {
	def      types.Service
	lastTool string
}

func (p *stubProvider) Definition() types.Service { return p.def }

func (p *stubProvider) Execute(_ context.Context, toolID string, _ map[string]interface{}, _ *types.Context) (*types.Result, error) {
	p.lastTool = toolID
	return &types.Result{Success: true, Data: map[string]interface{}{"tool": toolID}}, nil
}

func stubService(id string, category types.Category, tools int) types.Service {
	def := types.Service{ID: id, Name: id, Category: category}
	for i := 0; i < tools; i++ {
		def.Tools = append(def.Tools, types.Tool{ID: id + ".t"})
	}
	return def
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	p := &stubProvider{def: stubService("storage", types.CategoryStorage, 2)}

	if err := r.Register(p); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	got, ok := r.Get("storage")
	if !ok {
		t.Fatal("registered service not found")
	}
	if got != Provider(p) {
		t.Fatal("Get returned a different provider")
	}
}

func TestRegisterEmptyID(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubProvider{}); err == nil {
		t.Fatal("expected error for empty service ID")
	}
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&stubProvider{def: stubService("storage", types.CategoryStorage, 1)})

	r.Unregister("storage")
	if _, ok := r.Get("storage"); ok {
		t.Fatal("service still present after Unregister")
	}
}

func TestListFiltersByCategory(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&stubProvider{def: stubService("storage", types.CategoryStorage, 1)})
	_ = r.Register(&stubProvider{def: stubService("system", types.CategorySystem, 1)})

	if got := len(r.List(nil)); got != 2 {
		t.Fatalf("expected 2 services, got %d", got)
	}

	cat := types.CategoryStorage
	filtered := r.List(&cat)
	if len(filtered) != 1 || filtered[0].ID != "storage" {
		t.Fatalf("unexpected filtered list: %v", filtered)
	}
}

func TestExecuteRoutesByPrefix(t *testing.T) {
	r := NewRegistry()
	p := &stubProvider{def: stubService("storage", types.CategoryStorage, 1)}
	_ = r.Register(p)

	result, err := r.Execute(context.Background(), "storage.list", nil, nil)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
	if p.lastTool != "storage.list" {
		t.Fatalf("provider received %q", p.lastTool)
	}
}

func TestExecuteInvalidToolID(t *testing.T) {
	r := NewRegistry()

	result, err := r.Execute(context.Background(), "noDot", nil, nil)
	if err == nil {
		t.Fatal("expected error for tool ID without prefix")
	}
	if result.Success {
		t.Fatal("result must report failure")
	}
}

func TestExecuteUnknownService(t *testing.T) {
	r := NewRegistry()

	result, err := r.Execute(context.Background(), "ghost.run", nil, nil)
	if err == nil {
		t.Fatal("expected error for unknown service")
	}
	if result.Success {
		t.Fatal("result must report failure")
	}
}

func TestStats(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&stubProvider{def: stubService("storage", types.CategoryStorage, 5)})
	_ = r.Register(&stubProvider{def: stubService("system", types.CategorySystem, 2)})

	stats := r.Stats()
	if stats["total_services"] != 2 {
		t.Errorf("expected 2 services, got %d", stats["total_services"])
	}
	if stats["total_tools"] != 7 {
		t.Errorf("expected 7 tools, got %d", stats["total_tools"])
	}
}
