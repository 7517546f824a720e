package loaders

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure TextLoader implements the interface.
var _ driven.Loader = (*TextLoader)(nil)

// TextLoader reads plain text and markdown files as they are.
type TextLoader struct{}

// NewTextLoader creates the loader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Name returns the loader name.
func (l *TextLoader) Name() string {
	return "text"
}

// Extensions returns the handled file extensions.
func (l *TextLoader) Extensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// Load reads the source as UTF-8 text. Invalid sequences are replaced.
func (l *TextLoader) Load(ctx context.Context, src domain.RawSource) (*domain.Document, error) {
	b, err := readSource(ctx, src)
	if err != nil {
		return nil, loadError(src, err)
	}

	text := string(b)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	format := "text"
	if ext := strings.ToLower(filepath.Ext(filename(src))); ext == ".md" || ext == ".markdown" {
		format = "markdown"
	}
	return newDocument(src, text, map[string]any{"format": format})
}
