package loaders

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"dict", "docx", "html", "text"}, r.Names())
	assert.Equal(t, []string{".docx", ".htm", ".html", ".json", ".markdown", ".md", ".txt"}, r.Extensions())
}

func TestRegistry_ForFilename(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		filename string
		want     string
	}{
		{"ABC-0000001_1.0_Effective_en.json", "dict"},
		{"notes.TXT", "text"},
		{"readme.md", "text"},
		{"page.htm", "html"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			l, err := r.ForFilename(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.Name())
		})
	}
}

func TestRegistry_ForFilename_Unsupported(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.ForFilename("scan.pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.ForFilename("Makefile")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()

	l, err := r.Get("html")
	require.NoError(t, err)
	assert.Equal(t, "html", l.Name())

	_, err = r.Get("pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := DefaultRegistry()

	assert.ErrorIs(t, r.Register(NewTextLoader()), domain.ErrAlreadyExists)
}

func TestDictLoader_Load(t *testing.T) {
	src := domain.RawSource{
		Filename: "dir/ABC-0000001_1.0_Effective_en.json",
		Content:  []byte(`{"md_di": "# Title\n\nBody", "pages": 3}`),
	}

	doc, err := NewDictLoader().Load(context.Background(), src)

	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "ABC-0000001_1.0_Effective_en.json", doc.Filename)
	assert.Equal(t, "# Title\n\nBody", doc.TextContent)
	assert.InDelta(t, 3.0, doc.RawData["pages"], 1e-9)
	assert.NotNil(t, doc.InitialMetadata)
}

func TestDictLoader_Load_PrefersData(t *testing.T) {
	src := domain.RawSource{
		Filename:   "doc.json",
		Data:       map[string]any{"md_py": "from python"},
		DocumentID: "doc-7",
	}

	doc, err := NewDictLoader().Load(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, "doc-7", doc.ID)
	assert.Equal(t, "from python", doc.TextContent)

	doc.RawData["md_py"] = "changed"
	assert.Equal(t, "from python", src.Data["md_py"])
}

func TestDictLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  domain.RawSource
	}{
		{name: "no markdown keys", src: domain.RawSource{Filename: "a.json", Content: []byte(`{"text": "x"}`)}},
		{name: "empty markdown", src: domain.RawSource{Filename: "a.json", Content: []byte(`{"md_di": ""}`)}},
		{name: "blank markdown", src: domain.RawSource{Filename: "a.json", Data: map[string]any{"md_di": "  \n"}}},
		{name: "not json", src: domain.RawSource{Filename: "a.json", Content: []byte(`not json`)}},
		{name: "no content", src: domain.RawSource{Filename: "a.json"}},
		{name: "missing file", src: domain.RawSource{Path: "/does/not/exist.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewDictLoader().Load(context.Background(), tt.src)

			assert.Nil(t, doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrLoad))
			var le *domain.LoadError
			assert.ErrorAs(t, err, &le)
		})
	}
}

func TestTextLoader_Load_FromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.md")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBF# Policy\r\nText"), 0600))

	doc, err := NewTextLoader().Load(context.Background(), domain.RawSource{Path: path})

	require.NoError(t, err)
	assert.Equal(t, "policy.md", doc.Filename)
	assert.Equal(t, "# Policy\nText", doc.TextContent)
	assert.Equal(t, "markdown", doc.RawData["format"])
}

func TestTextLoader_Load_InvalidUTF8(t *testing.T) {
	doc, err := NewTextLoader().Load(context.Background(), domain.RawSource{
		Filename: "a.txt",
		Content:  []byte("ok \xff here"),
	})

	require.NoError(t, err)
	assert.Equal(t, "ok � here", doc.TextContent)
	assert.Equal(t, "text", doc.RawData["format"])
}

func TestTextLoader_Load_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTextLoader().Load(ctx, domain.RawSource{Filename: "a.txt", Content: []byte("x")})

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrLoad)
}

func TestHTMLLoader_Load(t *testing.T) {
	page := `<html><head><title>Cleaning SOP</title><style>p{}</style></head>
<body><h1>Purpose</h1><table><tr><td>a</td></tr></table></body></html>`

	doc, err := NewHTMLLoader().Load(context.Background(), domain.RawSource{Filename: "sop.html", Content: []byte(page)})

	require.NoError(t, err)
	assert.Equal(t, "Cleaning SOP", doc.RawData["title"])
	assert.Contains(t, doc.TextContent, "<h1>Purpose</h1>")
	assert.Contains(t, doc.TextContent, "<td>a</td>")
	assert.NotContains(t, doc.TextContent, "<title>")
}

func TestHTMLLoader_Load_EmptyBody(t *testing.T) {
	_, err := NewHTMLLoader().Load(context.Background(), domain.RawSource{
		Filename: "empty.html",
		Content:  []byte(`<html><head><title>T</title></head><body><script>x()</script></body></html>`),
	})

	assert.ErrorIs(t, err, domain.ErrLoad)
}
