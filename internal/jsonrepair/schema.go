package jsonrepair

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON Schema plus the declared property types used
// for coercion.
type Schema struct {
	compiled *jsonschema.Schema
	props    map[string][]string
}

// NewSchema compiles a JSON Schema given as a decoded map.
func NewSchema(raw map[string]any) (*Schema, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{
		compiled: compiled,
		props:    propertyTypes(raw),
	}, nil
}

var cache sync.Map

// Cached returns the compiled schema for raw, compiling it once per
// distinct schema document.
func Cached(raw map[string]any) (*Schema, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	key := string(b)
	if s, ok := cache.Load(key); ok {
		return s.(*Schema), nil
	}
	s, err := NewSchema(raw)
	if err != nil {
		return nil, err
	}
	actual, _ := cache.LoadOrStore(key, s)
	return actual.(*Schema), nil
}

// Properties returns the declared property names and their types.
func (s *Schema) Properties() map[string][]string {
	out := make(map[string][]string, len(s.props))
	for k, v := range s.props {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (s *Schema) validate(v any) error {
	return s.compiled.Validate(v)
}

// propertyTypes reads properties.*.type, which may be a string or a list.
func propertyTypes(raw map[string]any) map[string][]string {
	out := make(map[string][]string)
	props, _ := raw["properties"].(map[string]any)
	for name, p := range props {
		def, _ := p.(map[string]any)
		switch t := def["type"].(type) {
		case string:
			out[name] = []string{t}
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					out[name] = append(out[name], s)
				}
			}
		case []string:
			out[name] = append(out[name], t...)
		}
	}
	return out
}

// Object builds an object schema from property definitions.
// Every property is optional and additional properties are allowed so that
// unknown keys never fail validation.
func Object(properties map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
}

// StringOrNull is the property definition of a nullable string.
func StringOrNull() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

// StringList is the property definition of a nullable list of strings.
func StringList() map[string]any {
	return map[string]any{
		"type":  []any{"array", "null"},
		"items": map[string]any{"type": "string"},
	}
}
