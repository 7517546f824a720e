package jsonrepair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// StripCodeFence removes a surrounding markdown code fence such as
// ```json ... ``` and trims whitespace.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimPrefix(text, "JSON")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Repair fixes common malformations: single quotes become double quotes,
// trailing commas before a closing brace or bracket are dropped, and prose
// around the outermost object is cut.
func Repair(text string) string {
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}
	text = strings.ReplaceAll(text, "'", `"`)
	return trailingComma.ReplaceAllString(text, "$1")
}

func decode(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return obj, nil
}

// ParseAndValidate parses raw model text into an object that satisfies
// schema. A nil schema skips coercion and validation.
func ParseAndValidate(raw string, schema *Schema) (map[string]any, error) {
	text := StripCodeFence(raw)
	if text == "" {
		return nil, &domain.ParseError{Text: raw, Detail: "empty response"}
	}

	obj, err := decode(text)
	if err != nil {
		repaired, rerr := decode(Repair(text))
		if rerr != nil {
			return nil, &domain.ParseError{Text: raw, Detail: fmt.Sprintf("invalid JSON: %v", err)}
		}
		obj = repaired
	}

	if schema != nil {
		coerce(obj, schema.props)
		if err := schema.validate(obj); err != nil {
			return nil, &domain.ParseError{Text: raw, Detail: fmt.Sprintf("schema validation: %v", err)}
		}
	}
	return normalizeNumbers(obj).(map[string]any), nil
}

// coerce adjusts values to the declared property types in place.
// Values already valid for one of the declared types are left alone.
func coerce(obj map[string]any, props map[string][]string) {
	for name, types := range props {
		v, ok := obj[name]
		if !ok || v == nil {
			continue
		}
		switch {
		case slices.Contains(types, "array"):
			if s, isString := v.(string); isString {
				if strings.TrimSpace(s) == "" {
					obj[name] = []any{}
				} else {
					obj[name] = []any{s}
				}
			}
		case slices.Contains(types, "string"):
			switch val := v.(type) {
			case json.Number:
				obj[name] = val.String()
			case bool:
				obj[name] = fmt.Sprint(val)
			}
		case slices.Contains(types, "integer"), slices.Contains(types, "number"):
			if s, isString := v.(string); isString {
				n := json.Number(strings.TrimSpace(s))
				if _, err := n.Float64(); err == nil {
					obj[name] = n
				}
			}
		}
	}
}

// normalizeNumbers replaces json.Number with int64 when integral and
// float64 otherwise.
func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeNumbers(item)
		}
		return val
	default:
		return v
	}
}
