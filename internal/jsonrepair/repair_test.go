package jsonrepair

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema(Object(map[string]any{
		"summary":  StringOrNull(),
		"keywords": StringList(),
		"pages":    map[string]any{"type": "integer"},
	}))
	require.NoError(t, err)
	return s
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"no fence", "  {\"a\": 1}  ", `{"a": 1}`},
		{"trailing fence only", "{\"a\": 1}```", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestRepair(t *testing.T) {
	assert.Equal(t, `{"a": [1, 2]}`, Repair(`{'a': [1, 2,],}`))
	assert.Equal(t, `{"a": 1}`, Repair(`Here is the result: {"a": 1} hope it helps`))
}

func TestParseAndValidate_Repairs(t *testing.T) {
	got, err := ParseAndValidate("```json\n{'a': 1,}\n```", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1)}, got)
}

func TestParseAndValidate_StrictFirst(t *testing.T) {
	got, err := ParseAndValidate(`{"summary": "it's fine", "keywords": ["a"]}`, testSchema(t))
	require.NoError(t, err)
	assert.Equal(t, "it's fine", got["summary"])
	assert.Equal(t, []any{"a"}, got["keywords"])
}

func TestParseAndValidate_Coercion(t *testing.T) {
	got, err := ParseAndValidate(`{"summary": 42, "keywords": "single", "pages": "3", "extra": 1.5}`, testSchema(t))
	require.NoError(t, err)

	assert.Equal(t, "42", got["summary"])
	assert.Equal(t, []any{"single"}, got["keywords"])
	assert.Equal(t, int64(3), got["pages"])
	assert.Equal(t, 1.5, got["extra"])
}

func TestParseAndValidate_NullKept(t *testing.T) {
	got, err := ParseAndValidate(`{"summary": null, "keywords": null}`, testSchema(t))
	require.NoError(t, err)
	assert.Contains(t, got, "summary")
	assert.Nil(t, got["summary"])
	assert.Nil(t, got["keywords"])
}

func TestParseAndValidate_Failures(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", "   "},
		{"not json", "I could not find any metadata."},
		{"array", `["a", "b"]`},
		{"schema mismatch", `{"keywords": {"nested": true}}`},
		{"truncated", `{"summary": "cut`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAndValidate(tt.in, testSchema(t))
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, domain.ErrParse))

			var pe *domain.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.in, pe.Text)
		})
	}
}

func TestSchema_Properties(t *testing.T) {
	props := testSchema(t).Properties()
	assert.Equal(t, []string{"string", "null"}, props["summary"])
	assert.Equal(t, []string{"array", "null"}, props["keywords"])
	assert.Equal(t, []string{"integer"}, props["pages"])
}

func TestCached(t *testing.T) {
	raw := Object(map[string]any{"a": StringOrNull()})
	first, err := Cached(raw)
	require.NoError(t, err)
	second, err := Cached(Object(map[string]any{"a": StringOrNull()}))
	require.NoError(t, err)
	assert.Same(t, first, second)
}
