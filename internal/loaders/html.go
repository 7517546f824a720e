package loaders

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure HTMLLoader implements the interface.
var _ driven.Loader = (*HTMLLoader)(nil)

// HTMLLoader reads HTML files. The body is kept as markup so that the
// markdown cleaning step can convert tables and headings; the document
// title goes to raw data.
type HTMLLoader struct{}

// NewHTMLLoader creates the loader.
func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{}
}

// Name returns the loader name.
func (l *HTMLLoader) Name() string {
	return "html"
}

// Extensions returns the handled file extensions.
func (l *HTMLLoader) Extensions() []string {
	return []string{".html", ".htm"}
}

// Load parses the source and keeps the markup of the body.
func (l *HTMLLoader) Load(ctx context.Context, src domain.RawSource) (*domain.Document, error) {
	b, err := readSource(ctx, src)
	if err != nil {
		return nil, loadError(src, err)
	}

	root, err := html.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, loadError(src, fmt.Errorf("parse html: %w", err))
	}

	raw := map[string]any{"format": "html"}
	if title := textOf(find(root, atom.Title)); title != "" {
		raw["title"] = title
	}

	body := find(root, atom.Body)
	if body == nil {
		body = root
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, loadError(src, fmt.Errorf("render html: %w", err))
		}
	}

	if strings.TrimSpace(textOf(body)) == "" {
		return nil, loadError(src, errNoText)
	}
	return newDocument(src, strings.TrimSpace(buf.String()), raw)
}

// find returns the first element with the given atom in document order.
func find(n *html.Node, a atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

// textOf concatenates the text below n, skipping scripts and styles.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
