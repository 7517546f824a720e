package loaders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// errNoText is the cause of a load error for a document without text.
var errNoText = errors.New("document has no text content")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readSource returns the bytes of src, reading Path when Content is empty.
func readSource(ctx context.Context, src domain.RawSource) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(src.Content) > 0 {
		return bytes.TrimPrefix(src.Content, utf8BOM), nil
	}
	if src.Path == "" {
		return nil, errNoText
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Path, err)
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}

// filename returns the base name of the source.
func filename(src domain.RawSource) string {
	if src.Filename != "" {
		return filepath.Base(src.Filename)
	}
	return filepath.Base(src.Path)
}

// newDocument builds a document, failing when text is blank.
func newDocument(src domain.RawSource, text string, raw map[string]any) (*domain.Document, error) {
	name := filename(src)
	if strings.TrimSpace(text) == "" {
		return nil, &domain.LoadError{Filename: name, Err: errNoText}
	}

	id := src.DocumentID
	if id == "" {
		id = uuid.New().String()
	}
	return &domain.Document{
		ID:              id,
		Filename:        name,
		TextContent:     text,
		RawData:         raw,
		InitialMetadata: make(map[string]string),
	}, nil
}

// loadError wraps err unless it already is a load error.
func loadError(src domain.RawSource, err error) error {
	var le *domain.LoadError
	if errors.As(err, &le) {
		return err
	}
	return &domain.LoadError{Filename: filename(src), Err: err}
}
