package loaders

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure DOCXLoader implements the interface.
var _ driven.Loader = (*DOCXLoader)(nil)

const (
	docxBody = "word/document.xml"
	docxCore = "docProps/core.xml"
)

var errNoBody = errors.New("missing " + docxBody)

// DOCXLoader reads Word documents into markdown-like text. Headings keep
// their level and tables become pipe rows.
type DOCXLoader struct{}

// NewDOCXLoader creates the loader.
func NewDOCXLoader() *DOCXLoader {
	return &DOCXLoader{}
}

// Name returns the loader name.
func (l *DOCXLoader) Name() string {
	return "docx"
}

// Extensions returns the handled file extensions.
func (l *DOCXLoader) Extensions() []string {
	return []string{".docx"}
}

// Load extracts the body text and the core title of the document.
func (l *DOCXLoader) Load(ctx context.Context, src domain.RawSource) (*domain.Document, error) {
	b, err := readSource(ctx, src)
	if err != nil {
		return nil, loadError(src, err)
	}

	reader, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, loadError(src, fmt.Errorf("open docx: %w", err))
	}

	body, err := readZipFile(reader, docxBody)
	if err != nil {
		return nil, loadError(src, err)
	}
	if body == nil {
		return nil, loadError(src, errNoBody)
	}

	text, err := parseDocumentXML(body)
	if err != nil {
		return nil, loadError(src, fmt.Errorf("parse %s: %w", docxBody, err))
	}

	raw := map[string]any{"format": "docx"}
	if title := coreTitle(reader); title != "" {
		raw["title"] = title
	}
	return newDocument(src, text, raw)
}

// readZipFile returns the content of name, or nil when the archive lacks it.
func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, f := range reader.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, nil
}

// coreTitle returns the dc:title of docProps/core.xml, if any.
func coreTitle(reader *zip.Reader) string {
	content, err := readZipFile(reader, docxCore)
	if err != nil || content == nil {
		return ""
	}
	var core struct {
		Title string `xml:"title"`
	}
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}

// docxWriter accumulates paragraphs and table rows in document order.
type docxWriter struct {
	out     strings.Builder
	para    strings.Builder
	heading int
	depth   int // table nesting; nested cells fold into the outer cell
	cell    []string
	row     []string
}

// parseDocumentXML streams word/document.xml so that paragraphs and tables
// keep their order.
func parseDocumentXML(content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	w := &docxWriter{}
	inText, inTabs := false, false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				w.para.Reset()
				w.heading = 0
			case "pStyle":
				w.heading = headingLevel(attr(t, "val"))
			case "t":
				inText = true
			case "tabs":
				inTabs = true
			case "tab":
				if !inTabs {
					w.para.WriteByte('\t')
				}
			case "br", "cr":
				w.para.WriteByte('\n')
			case "tbl":
				w.depth++
			case "tr":
				if w.depth == 1 {
					w.row = w.row[:0]
				}
			case "tc":
				if w.depth == 1 {
					w.cell = w.cell[:0]
				}
			}
		case xml.CharData:
			if inText {
				w.para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabs = false
			case "p":
				w.endParagraph()
			case "tc":
				if w.depth == 1 {
					w.row = append(w.row, strings.Join(w.cell, " "))
				}
			case "tr":
				if w.depth == 1 {
					w.endRow()
				}
			case "tbl":
				w.depth--
				if w.depth == 0 {
					w.out.WriteByte('\n')
				}
			}
		}
	}
	return strings.TrimSpace(w.out.String()), nil
}

func (w *docxWriter) endParagraph() {
	text := strings.TrimSpace(w.para.String())
	if w.depth > 0 {
		if text != "" {
			w.cell = append(w.cell, text)
		}
		return
	}
	if text == "" {
		w.out.WriteByte('\n')
		return
	}
	if w.heading > 0 {
		w.out.WriteString(strings.Repeat("#", w.heading) + " ")
	}
	w.out.WriteString(text)
	w.out.WriteByte('\n')
}

func (w *docxWriter) endRow() {
	if len(w.row) == 0 {
		return
	}
	w.out.WriteString("| " + strings.Join(w.row, " | ") + " |\n")
}

// headingLevel maps paragraph styles such as "Heading2" or "Title" to a
// markdown heading level. Other styles return 0.
func headingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	switch {
	case s == "title":
		return 1
	case strings.HasPrefix(s, "heading") && len(s) == len("heading")+1:
		if d := s[len(s)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	return 0
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
