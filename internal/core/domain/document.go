package domain

import "maps"

// RawSource is the input handed to a Loader.
// Exactly which fields are used depends on the loader: file based loaders
// read Path or Content, the dict loader reads Data.
type RawSource struct {
	// Filename is the original filename of the document.
	Filename string

	// Path is the location on disk, if any.
	Path string

	// Content holds the raw bytes when the caller already read them.
	Content []byte

	// Data is a pre-parsed source object (e.g. layout analysis output).
	Data map[string]any

	// DocumentID optionally fixes the document ID. A UUID is generated when empty.
	DocumentID string
}

// Document represents a loaded document flowing through one pipeline run.
// It is created by a Loader, enriched with initial metadata before cleaning,
// and never mutated once the LLM stage begins.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original filename.
	Filename string

	// TextContent is the primary text (usually markdown).
	TextContent string

	// RawData holds source-specific data such as page-level layout fragments.
	RawData map[string]any

	// InitialMetadata is populated by filename parsing before model invocation.
	InitialMetadata map[string]string

	// Language is resolved from InitialMetadata or the configured default.
	Language string

	// DocumentType is resolved from InitialMetadata.
	DocumentType string
}

// DocumentContext is a read-only snapshot of a Document handed to passes
// and fallback mechanisms.
type DocumentContext struct {
	ID              string
	Filename        string
	Language        string
	DocumentType    string
	TextContent     string
	InitialMetadata map[string]string
	RawData         map[string]any
}

// Context returns a snapshot of the document. Maps are copied so that
// callees cannot mutate the document.
func (d *Document) Context() DocumentContext {
	return DocumentContext{
		ID:              d.ID,
		Filename:        d.Filename,
		Language:        d.Language,
		DocumentType:    d.DocumentType,
		TextContent:     d.TextContent,
		InitialMetadata: maps.Clone(d.InitialMetadata),
		RawData:         maps.Clone(d.RawData),
	}
}

// ApplyInitialMetadata merges filename-derived metadata into the document and
// resolves language and document type. Empty language falls back to defaultLanguage.
func (d *Document) ApplyInitialMetadata(fields map[string]string, defaultLanguage string) {
	if d.InitialMetadata == nil {
		d.InitialMetadata = make(map[string]string, len(fields))
	}
	maps.Copy(d.InitialMetadata, fields)

	d.Language = d.InitialMetadata[FieldLanguage]
	if d.Language == "" {
		d.Language = defaultLanguage
	}
	d.DocumentType = d.InitialMetadata[FieldDocumentType]
	if d.DocumentType == "" {
		d.DocumentType = "unknown"
	}
}
