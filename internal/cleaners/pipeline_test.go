package cleaners

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

type suffixCleaner struct {
	name   string
	suffix string
}

func (c *suffixCleaner) Name() string { return c.name }
func (c *suffixCleaner) Clean(text string, _ *domain.CleaningConfig) string {
	return text + c.suffix
}

func TestPipeline_Order(t *testing.T) {
	p := NewPipeline(&suffixCleaner{"a", "1"}, &suffixCleaner{"b", "2"})
	p.Add(&suffixCleaner{"c", "3"})

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []string{"a", "b", "c"}, p.Names())
	assert.Equal(t, "a+b+c", p.Name())
	assert.Equal(t, "x123", p.Clean("x", nil))
}

func TestPipeline_Empty(t *testing.T) {
	assert.Equal(t, "text", NewPipeline().Clean("text", nil))
}

func TestPipeline_GenericOrder(t *testing.T) {
	p, err := DefaultRegistry().BuildPipeline([]string{StepBreaks, StepPatterns, StepMarkers, StepMarkdown})
	require.NoError(t, err)

	cfg := domain.DefaultCleaningConfig()
	in := "<h1>Title</h1>\n\n\n\n<figure>chart</figure>:selected: Option A<!-- PageHeader=\"H\" -->"
	got := p.Clean(in, &cfg)

	assert.Equal(t, "# Title\n\n☒ Option A", got)
	assert.Equal(t, got, p.Clean(got, &cfg), "cleaning is idempotent on cleaned text")
}

func TestPipeline_GenericOrder_EscapedMarkupIdempotent(t *testing.T) {
	p, err := DefaultRegistry().BuildPipeline([]string{StepPatterns, StepMarkers, StepBreaks, StepMarkdown})
	require.NoError(t, err)

	cfg := domain.DefaultCleaningConfig()
	once := p.Clean("<p>Use &lt;b&gt;bold&lt;/b&gt; tags</p>", &cfg)
	twice := p.Clean(once, &cfg)

	assert.Equal(t, once, twice)
	assert.NotContains(t, once, "**bold**")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterDefaults(r))

	assert.True(t, r.Has(StepMarkdown))
	assert.False(t, r.Has("unknown"))
	assert.Len(t, r.Names(), 8)

	err := r.Register(StepMarkdown, func() driven.Cleaner { return NewMarkdownConverter() })
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = r.Build("unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.BuildPipeline([]string{StepBreaks, "unknown"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
