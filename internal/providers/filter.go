package providers

import (
	"github.com/saftree/storagebridge/internal/storage"
	"github.com/saftree/storagebridge/internal/types"
)

// Success helper
func Success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

// Failure helper
func Failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}

// parseFilter decodes the optional filter object from tool params.
// A missing or malformed specification means "match everything".
func parseFilter(raw interface{}) *storage.Filter {
	spec, ok := raw.(map[string]interface{})
	if !ok || len(spec) == 0 {
		return nil
	}

	f := &storage.Filter{}
	if v, ok := spec["min_size"].(float64); ok {
		n := int64(v)
		f.MinSize = &n
	}
	if v, ok := spec["max_size"].(float64); ok {
		n := int64(v)
		f.MaxSize = &n
	}
	if v, ok := spec["modified_after"].(float64); ok {
		n := int64(v)
		f.ModifiedAfter = &n
	}
	if v, ok := spec["modified_before"].(float64); ok {
		n := int64(v)
		f.ModifiedBefore = &n
	}
	f.Extensions = stringSlice(spec["extensions"])
	f.MIMETypes = stringSlice(spec["mime_types"])
	if v, ok := spec["name_glob"].(string); ok {
		f.NameGlob = v
	}
	return f
}

func stringSlice(raw interface{}) []string {
	arr, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
