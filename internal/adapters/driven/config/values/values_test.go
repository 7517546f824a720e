package values

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_Int(t *testing.T) {
	m := Map{
		"toml":     int64(3),
		"native":   4,
		"json":     float64(5),
		"fraction": 1.5,
		"text":     "6",
	}

	tests := []struct {
		key    string
		want   int
		wantOK bool
	}{
		{"toml", 3, true},
		{"native", 4, true},
		{"json", 5, true},
		{"fraction", 0, false},
		{"text", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := m.Int(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMap_Float(t *testing.T) {
	m := Map{"f": 0.5, "i": int64(2), "s": "0.5"}

	f, ok := m.Float("f")
	assert.True(t, ok)
	assert.InDelta(t, 0.5, f, 1e-9)

	f, ok = m.Float("i")
	assert.True(t, ok)
	assert.InDelta(t, 2.0, f, 1e-9)

	_, ok = m.Float("s")
	assert.False(t, ok)
}

func TestMap_Duration(t *testing.T) {
	m := Map{
		"text":    "90s",
		"seconds": int64(30),
		"float":   1.5,
		"bad":     "soon",
		"kind":    true,
	}

	d, ok, err := m.Duration("text")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 90*time.Second, d)

	d, _, err = m.Duration("seconds")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	d, _, err = m.Duration("float")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	_, ok, err = m.Duration("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = m.Duration("bad")
	assert.True(t, ok)
	assert.Error(t, err)

	_, _, err = m.Duration("kind")
	assert.ErrorContains(t, err, "bool")
}

func TestMap_Strings(t *testing.T) {
	src := []string{"a"}
	m := Map{"typed": src, "decoded": []any{"x", 1, "y"}, "scalar": "z"}

	got, ok := m.Strings("typed")
	require.True(t, ok)
	got[0] = "changed"
	assert.Equal(t, "a", src[0])

	got, ok = m.Strings("decoded")
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, got)

	_, ok = m.Strings("scalar")
	assert.False(t, ok)
}

func TestMap_Tables(t *testing.T) {
	m := Map{
		"field_map": []any{
			map[string]any{"canonical": "name"},
			map[string]any{"canonical": "title", "output": "Title"},
		},
		"mixed":  []any{map[string]any{"canonical": "name"}, "title"},
		"scalar": "name",
	}

	tables, ok := m.Tables("field_map")
	require.True(t, ok)
	require.Len(t, tables, 2)
	assert.Equal(t, "Title", tables[1]["output"])

	_, ok = m.Tables("mixed")
	assert.False(t, ok)
	_, ok = m.Tables("scalar")
	assert.False(t, ok)
}

func TestMap_Section(t *testing.T) {
	m := Map{
		"cleaning.selection_mappings.[x]": "☒",
		"cleaning.selection_mappings.n":   1,
		"cleaning.selection_mappings":     "flat",
		"cleaning.selection_mappingsx.y":  "other",
	}

	assert.Equal(t, map[string]string{"[x]": "☒"}, m.Section("cleaning.selection_mappings"))
	assert.Empty(t, m.Section("models.primary"))
}

func TestMap_Delete(t *testing.T) {
	m := Map{
		"models.fallback.model":    "gpt-4o",
		"models.fallback.endpoint": "http://llm",
		"models.fallbacks":         "keep",
		"models.primary.model":     "llama3",
	}

	assert.True(t, m.Delete("models.fallback"))
	assert.False(t, m.Delete("models.fallback"))
	assert.Equal(t, []string{"models.fallbacks", "models.primary.model"}, m.Keys())
}

func TestFlatten(t *testing.T) {
	fieldMap := []any{map[string]any{"canonical": "name"}}

	flat := Flatten(map[string]any{
		"extraction": map[string]any{"attempts": int64(3)},
		"models": map[string]any{
			"primary": map[string]any{"model": "llama3"},
		},
		"field_map": fieldMap,
	})

	assert.Equal(t, Map{
		"extraction.attempts":  int64(3),
		"models.primary.model": "llama3",
		"field_map":            fieldMap,
	}, flat)
}

func TestMap_Nest(t *testing.T) {
	nested := Map{
		"x.y.z": 1,
		"x.w":   2,
		"top":   3,
		"a":     "scalar",
		"a.b":   "nested",
	}.Nest()

	assert.Equal(t, map[string]any{
		"x": map[string]any{
			"y": map[string]any{"z": 1},
			"w": 2,
		},
		"top": 3,
		"a":   "scalar",
		"a.b": "nested",
	}, nested)
}
