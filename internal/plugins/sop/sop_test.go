package sop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/plugins"
	"github.com/custodia-labs/docmeta/internal/references"
)

func TestFilenameParser_Parse(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     map[string]string
	}{
		{
			name:     "all parts",
			filename: "QMS-0001234_2.0_Effective_EN.json",
			want: map[string]string{
				domain.FieldName:         "QMS-0001234",
				domain.FieldVersion:      "2.0",
				domain.FieldStatus:       "Effective",
				domain.FieldLanguage:     "en",
				domain.FieldDocumentType: "sop",
			},
		},
		{
			name:     "version prefix",
			filename: "ABC-0000001_v1.1_Draft_de.pdf",
			want: map[string]string{
				domain.FieldName:         "ABC-0000001",
				domain.FieldVersion:      "1.1",
				domain.FieldStatus:       "Draft",
				domain.FieldLanguage:     "de",
				domain.FieldDocumentType: "sop",
			},
		},
		{
			name:     "code only",
			filename: "ABC-0000001.json",
			want: map[string]string{
				domain.FieldName:         "ABC-0000001",
				domain.FieldDocumentType: "sop",
			},
		},
		{
			name:     "language not a code",
			filename: "ABC-0000001_1.0_Effective_english.json",
			want: map[string]string{
				domain.FieldName:         "ABC-0000001",
				domain.FieldVersion:      "1.0",
				domain.FieldStatus:       "Effective",
				domain.FieldDocumentType: "sop",
			},
		},
		{
			name:     "empty",
			filename: ".json",
			want: map[string]string{
				domain.FieldName:         "unknown",
				domain.FieldDocumentType: "sop",
			},
		},
	}

	p := NewFilenameParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(tt.filename))
		})
	}
}

func TestNew(t *testing.T) {
	p, err := New(plugins.Deps{})

	require.NoError(t, err)
	assert.Equal(t, Name, p.Name)
	assert.Equal(t, []string{
		"patterns", "markers", "sop_doc_version", "sop_uncontrolled_copy", "sop_frequent_lines", "breaks", "markdown",
	}, p.CleaningSteps)
	assert.Equal(t, references.SOPIDs, p.ReferenceExtractor)
	require.NotNil(t, p.Fallback)
	require.Len(t, p.Passes, 2)
	assert.Equal(t, PassIdentity, p.Passes[0].Name())
	assert.Equal(t, PassReferences, p.Passes[1].Name())
	assert.NoError(t, p.FieldMap.Validate())
	assert.Len(t, p.FieldMap, 13)

	fields := p.Injected.Fields()
	assert.Equal(t, "Yes", fields[domain.FieldGlobalDocInd])
	assert.Equal(t, "QA", fields[domain.FieldOwnerDepartment])
	assert.Len(t, fields, 7)
}

func TestReferencesPass_DeclaresReferenceFields(t *testing.T) {
	pass := NewReferencesPass(nil, nil)

	extractor, fields := pass.ReferenceFields()

	assert.Equal(t, references.SOPIDs, extractor)
	assert.Equal(t, domain.ReferenceFields(), fields)
	for _, f := range fields {
		assert.Contains(t, ReferencesSchema()["properties"], f)
	}
}

func TestNewRegexFallback_MissingExtractor(t *testing.T) {
	_, err := NewRegexFallback(references.NewRegistry())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

const sampleSOP = `# Cleaning of Production Equipment

## 1. Purpose
To define how production equipment is cleaned between batches.

## 2. Scope
Applies to all filling lines at the Basel site.

## 3. Responsibilities
Operators follow QMS-0000456 and record results in frm-0000789.
This procedure itself is ABC-0000001.
`

func TestRegexFallback_Extract(t *testing.T) {
	f, err := NewRegexFallback(references.Default)
	require.NoError(t, err)
	doc := domain.DocumentContext{
		Filename:        "ABC-0000001_1.0_Effective_en.json",
		TextContent:     sampleSOP,
		InitialMetadata: map[string]string{domain.FieldName: "ABC-0000001"},
	}

	out, ok := f.Extract(context.Background(), doc)

	require.True(t, ok)
	assert.Equal(t, "To define how production equipment is cleaned between batches.", out[domain.FieldPurpose])
	assert.Equal(t, "Applies to all filling lines at the Basel site.", out[domain.FieldScope])
	assert.Equal(t, []string{"QMS-0000456", "FRM-0000789"}, out[domain.FieldReferencedDocuments])
}

func TestRegexFallback_InlineHeadings(t *testing.T) {
	f, err := NewRegexFallback(references.Default)
	require.NoError(t, err)
	text := "Purpose: Describe archiving.\nScope: Paper records only.\n"

	out, ok := f.Extract(context.Background(), domain.DocumentContext{TextContent: text})

	require.True(t, ok)
	assert.Equal(t, "Describe archiving.", out[domain.FieldPurpose])
	assert.Equal(t, "Paper records only.", out[domain.FieldScope])
	assert.NotContains(t, out, domain.FieldReferencedDocuments)
}

func TestRegexFallback_NothingFound(t *testing.T) {
	f, err := NewRegexFallback(references.Default)
	require.NoError(t, err)

	out, ok := f.Extract(context.Background(), domain.DocumentContext{TextContent: "just some prose without structure"})

	assert.False(t, ok)
	assert.Nil(t, out)
}

func TestRegexFallback_Cancelled(t *testing.T) {
	f, err := NewRegexFallback(references.Default)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := f.Extract(ctx, domain.DocumentContext{TextContent: sampleSOP})

	assert.False(t, ok)
}
