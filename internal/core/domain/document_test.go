package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDocument_ApplyInitialMetadata tests language and type resolution
func TestDocument_ApplyInitialMetadata(t *testing.T) {
	tests := []struct {
		name         string
		fields       map[string]string
		wantLanguage string
		wantType     string
	}{
		{
			name:         "values from filename",
			fields:       map[string]string{FieldLanguage: "de", FieldDocumentType: "sop"},
			wantLanguage: "de",
			wantType:     "sop",
		},
		{
			name:         "defaults when missing",
			fields:       map[string]string{FieldName: "ABC-0000001"},
			wantLanguage: "en",
			wantType:     "unknown",
		},
		{
			name:         "nil fields",
			fields:       nil,
			wantLanguage: "en",
			wantType:     "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{ID: "doc-1", Filename: "file.txt"}
			doc.ApplyInitialMetadata(tt.fields, "en")

			assert.Equal(t, tt.wantLanguage, doc.Language)
			assert.Equal(t, tt.wantType, doc.DocumentType)
			require.NotNil(t, doc.InitialMetadata)
			for k, v := range tt.fields {
				assert.Equal(t, v, doc.InitialMetadata[k])
			}
		})
	}
}

// TestDocument_ApplyInitialMetadata_Merges tests existing keys are kept
func TestDocument_ApplyInitialMetadata_Merges(t *testing.T) {
	doc := &Document{InitialMetadata: map[string]string{"source": "upload"}}
	doc.ApplyInitialMetadata(map[string]string{FieldVersion: "1.0"}, "fr")

	assert.Equal(t, "upload", doc.InitialMetadata["source"])
	assert.Equal(t, "1.0", doc.InitialMetadata[FieldVersion])
	assert.Equal(t, "fr", doc.Language)
}

// TestDocument_Context tests the snapshot is isolated from the document
func TestDocument_Context(t *testing.T) {
	doc := &Document{
		ID:              "doc-1",
		Filename:        "ABC-0000001_1.0_Effective_en.json",
		TextContent:     "# Title",
		RawData:         map[string]any{"pages": 2},
		InitialMetadata: map[string]string{FieldName: "ABC-0000001"},
		Language:        "en",
		DocumentType:    "sop",
	}

	ctx := doc.Context()
	assert.Equal(t, doc.ID, ctx.ID)
	assert.Equal(t, doc.Filename, ctx.Filename)
	assert.Equal(t, doc.TextContent, ctx.TextContent)
	assert.Equal(t, "en", ctx.Language)
	assert.Equal(t, "sop", ctx.DocumentType)

	ctx.InitialMetadata[FieldName] = "changed"
	ctx.RawData["pages"] = 99

	assert.Equal(t, "ABC-0000001", doc.InitialMetadata[FieldName])
	assert.Equal(t, 2, doc.RawData["pages"])
}
