// Package engine holds the shared input-normalization machinery used by both
// the plain nested-array cast and the nested-attributes writers. Keeping a
// single routine here prevents the two paths from diverging.
package engine

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Sequence normalizes v into an ordered sequence of attribute mappings.
// Recognized shapes:
//   - []map[string]any / []any of mappings: passthrough in order
//   - map[string]any keyed by decimal-string indices ("0", "1", ...): entries
//     ordered by ascending numeric key, the keys themselves discarded
//
// Anything else reports ok=false and the caller raises a type mismatch.
func Sequence(v any) ([]map[string]any, bool) {
	switch src := v.(type) {
	case []map[string]any:
		return src, true
	case []any:
		out := make([]map[string]any, 0, len(src))
		for _, e := range src {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	case map[string]any:
		type entry struct {
			idx int
			m   map[string]any
		}
		entries := make([]entry, 0, len(src))
		for k, e := range src {
			idx, err := strconv.Atoi(k)
			if err != nil || idx < 0 {
				return nil, false
			}
			m, ok := e.(map[string]any)
			if !ok {
				return nil, false
			}
			entries = append(entries, entry{idx: idx, m: m})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
		out := make([]map[string]any, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.m)
		}
		return out, true
	default:
		return nil, false
	}
}

// Truthy reports whether a destroy-marker value means "drop this child".
// The accepted set is "1"/"true" (case-insensitive), numeric 1, and true;
// everything else, including absence, is falsy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "1" || s == "true"
	case int:
		return t == 1
	case int64:
		return t == 1
	case float64:
		return t == 1
	case json.Number:
		return strings.TrimSpace(t.String()) == "1"
	default:
		return false
	}
}

// Blank reports whether v is nil, an empty string, or a whitespace-only
// string.
func Blank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// AllBlank reports whether every value in attrs, aside from the ignored keys,
// is blank.
func AllBlank(attrs map[string]any, ignore ...string) bool {
	for k, v := range attrs {
		skip := false
		for _, ig := range ignore {
			if k == ig {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if !Blank(v) {
			return false
		}
	}
	return true
}
