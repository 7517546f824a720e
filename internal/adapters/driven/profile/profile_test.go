package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

const register = `
name: quality-register
description: Columns of the QMS register
fields:
  - canonical: name
    output: Document Number
  - version
  - canonical: summary
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(register), "ignored")

	require.NoError(t, err)
	assert.Equal(t, "quality-register", p.Name)
	assert.Equal(t, "Columns of the QMS register", p.Description)
	assert.Equal(t, domain.FieldMap{
		{Canonical: "name", Output: "Document Number"},
		{Canonical: "version", Output: "version"},
		{Canonical: "summary", Output: "summary"},
	}, p.FieldMap)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not yaml", data: "fields: [unclosed"},
		{name: "no fields", data: "name: empty\n"},
		{name: "unknown key", data: "name: x\ncolumns: [a]\n"},
		{name: "duplicate output", data: "fields:\n  - canonical: name\n    output: x\n  - canonical: title\n    output: x\n"},
		{name: "blank canonical", data: "fields:\n  - output: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "p")
			assert.Error(t, err)
		})
	}
}

func TestLoad_NameFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields: [name, summary]\n"), 0600))

	p, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "minimal", p.Name)
	assert.Equal(t, []string{"name", "summary"}, p.FieldMap.OutputNames())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("fields: [name]\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte(register), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0600))

	profiles, err := LoadDir(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "quality-register"}, Names(profiles))
}

func TestLoadDir_Missing(t *testing.T) {
	profiles, err := LoadDir(filepath.Join(t.TempDir(), "absent"))

	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestLoadDir_DuplicateName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.yaml"), []byte("name: same\nfields: [name]\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.yaml"), []byte("name: same\nfields: [title]\n"), 0600))

	_, err := LoadDir(dir)

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestMarshal_RoundTrip(t *testing.T) {
	fm := domain.FieldMap{
		{Canonical: "name", Output: "Document Number"},
		{Canonical: "summary", Output: "summary"},
	}

	data, err := Marshal("export", "", fm)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- summary")

	p, err := Parse(data, "")
	require.NoError(t, err)
	assert.Equal(t, fm, p.FieldMap)
}
