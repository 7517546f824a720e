// Package values is the typed view over flattened docmeta settings that the
// file and memory config stores share.
package values

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"
)

// Map holds settings keyed in dot notation, e.g. "models.primary.model".
type Map map[string]any

// String returns the value at key when it is a string.
func (m Map) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Int returns the value at key when it is a whole number. TOML decodes
// integers as int64; JSON-sourced values arrive as float64.
func (m Map) Int(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

// Float returns the value at key when it is numeric.
func (m Map) Float(key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Bool returns the value at key when it is a boolean.
func (m Map) Bool(key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

// Duration reads "90s" style strings or a number of seconds. The error is
// set when the key is present but holds neither.
func (m Map) Duration(key string) (time.Duration, bool, error) {
	val, ok := m[key]
	if !ok {
		return 0, false, nil
	}
	switch v := val.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, true, err
		}
		return d, true, nil
	case int64:
		return time.Duration(v) * time.Second, true, nil
	case int:
		return time.Duration(v) * time.Second, true, nil
	case float64:
		return time.Duration(v * float64(time.Second)), true, nil
	}
	return 0, true, fmt.Errorf("%T is not a duration", val)
}

// Strings returns the list at key. Non-string items of a decoded TOML array
// are dropped.
func (m Map) Strings(key string) ([]string, bool) {
	switch v := m[key].(type) {
	case []string:
		return slices.Clone(v), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

// Tables returns the array of tables at key, such as field_map. Any item
// that is not a table makes the whole value unreadable.
func (m Map) Tables(key string) ([]map[string]any, bool) {
	switch v := m[key].(type) {
	case []map[string]any:
		return v, true
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			table, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, table)
		}
		return out, true
	}
	return nil, false
}

// Section returns the string values below prefix keyed by the rest of their
// key. Open-ended tables like cleaning.selection_mappings are read this way.
func (m Map) Section(prefix string) map[string]string {
	prefix += "."
	out := make(map[string]string)
	for key, val := range m {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || rest == "" {
			continue
		}
		if s, ok := val.(string); ok {
			out[rest] = s
		}
	}
	return out
}

// Delete removes key and every key below it. It reports whether anything
// was removed.
func (m Map) Delete(key string) bool {
	removed := false
	for k := range m {
		if k == key || strings.HasPrefix(k, key+".") {
			delete(m, k)
			removed = true
		}
	}
	return removed
}

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Flatten converts decoded TOML tables to dot-notation keys, so
// {"extraction": {"attempts": 3}} becomes {"extraction.attempts": 3}.
// Arrays of tables stay whole under their own key.
func Flatten(tree map[string]any) Map {
	out := make(Map)
	flatten(out, tree, "")
	return out
}

func flatten(out Map, tree map[string]any, prefix string) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(out, nested, key)
			continue
		}
		out[key] = value
	}
}

// Nest converts dot-notation keys back to nested tables for writing. A key
// whose prefix already holds a plain value stays flat and is written as a
// quoted key.
func (m Map) Nest() map[string]any {
	result := make(map[string]any)

	for _, key := range m.Keys() {
		parts := strings.Split(key, ".")
		table := result
		ok := true
		for _, part := range parts[:len(parts)-1] {
			next, exists := table[part]
			if !exists {
				child := make(map[string]any)
				table[part] = child
				table = child
				continue
			}
			child, isTable := next.(map[string]any)
			if !isTable {
				ok = false
				break
			}
			table = child
		}
		last := parts[len(parts)-1]
		if _, clash := table[last].(map[string]any); !ok || clash {
			result[key] = m[key]
			continue
		}
		table[last] = m[key]
	}

	return result
}
