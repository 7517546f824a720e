package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure DictLoader implements the interface.
var _ driven.Loader = (*DictLoader)(nil)

// Keys holding the markdown produced by layout analysis, in preference order.
const (
	KeyMarkdownDI = "md_di"
	KeyMarkdownPy = "md_py"
)

// DictLoader reads layout analysis output: a JSON object whose markdown
// text is under md_di or md_py. The whole object is kept as raw data.
type DictLoader struct{}

// NewDictLoader creates the loader.
func NewDictLoader() *DictLoader {
	return &DictLoader{}
}

// Name returns the loader name.
func (l *DictLoader) Name() string {
	return "dict"
}

// Extensions returns the handled file extensions.
func (l *DictLoader) Extensions() []string {
	return []string{".json"}
}

// Load decodes the source. Data takes precedence over bytes when set.
func (l *DictLoader) Load(ctx context.Context, src domain.RawSource) (*domain.Document, error) {
	data := maps.Clone(src.Data)
	if data == nil {
		b, err := readSource(ctx, src)
		if err != nil {
			return nil, loadError(src, err)
		}
		if err := json.Unmarshal(b, &data); err != nil {
			return nil, loadError(src, fmt.Errorf("decode json: %w", err))
		}
	} else if err := ctx.Err(); err != nil {
		return nil, loadError(src, err)
	}

	text := markdown(data)
	if text == "" {
		return nil, loadError(src, fmt.Errorf("%w: object has no %s or %s", errNoText, KeyMarkdownDI, KeyMarkdownPy))
	}
	return newDocument(src, text, data)
}

func markdown(data map[string]any) string {
	for _, key := range []string{KeyMarkdownDI, KeyMarkdownPy} {
		if s, ok := data[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
