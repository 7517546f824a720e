package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/jsonrepair"
)

// --- Mock implementations ---

// reply is one scripted model response.
type reply struct {
	text string
	err  error
}

// mockModelClient implements driven.ModelClient with scripted replies per
// model name. When a script runs out the last reply repeats.
type mockModelClient struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   []driven.GenerateOptions
	inputs  []string
}

func newMockModelClient() *mockModelClient {
	return &mockModelClient{replies: make(map[string][]reply)}
}

func (m *mockModelClient) script(model string, replies ...reply) *mockModelClient {
	m.replies[model] = append(m.replies[model], replies...)
	return m
}

func (m *mockModelClient) Generate(ctx context.Context, messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, opts)
	if len(messages) > 0 {
		m.inputs = append(m.inputs, messages[len(messages)-1].Content)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	script := m.replies[opts.Target.Model]
	if len(script) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := script[0]
	if len(script) > 1 {
		m.replies[opts.Target.Model] = script[1:]
	}
	return r.text, r.err
}

func (m *mockModelClient) Close() error { return nil }

func (m *mockModelClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockModelClient) modelsCalled() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	models := make([]string, len(m.calls))
	for i, c := range m.calls {
		models[i] = c.Target.Model
	}
	return models
}

// mockPass implements driven.LLMPass.
type mockPass struct {
	name      string
	schema    map[string]any
	extractor string
	refFields []string
}

func summaryPass() *mockPass {
	return &mockPass{
		name: "summary",
		schema: jsonrepair.Object(map[string]any{
			"summary":  jsonrepair.StringOrNull(),
			"keywords": jsonrepair.StringList(),
		}),
	}
}

func (p *mockPass) Name() string { return p.name }

func (p *mockPass) Schema() map[string]any { return p.schema }

func (p *mockPass) Messages(input string, _ domain.DocumentContext) ([]driven.ChatMessage, error) {
	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "extract " + p.name},
		{Role: driven.RoleUser, Content: input},
	}, nil
}

// mockRefPass adds reference fields to mockPass.
type mockRefPass struct {
	*mockPass
}

func (p *mockRefPass) ReferenceFields() (string, []string) {
	return p.extractor, p.refFields
}

// mockLoader implements driven.Loader.
type mockLoader struct {
	name string
	exts []string
	err  error
}

func (l *mockLoader) Name() string { return l.name }

func (l *mockLoader) Extensions() []string { return l.exts }

func (l *mockLoader) Load(_ context.Context, src domain.RawSource) (*domain.Document, error) {
	if l.err != nil {
		return nil, l.err
	}
	return &domain.Document{
		ID:          src.DocumentID,
		Filename:    src.Filename,
		TextContent: string(src.Content),
	}, nil
}

// mockLoaderRegistry implements driven.LoaderRegistry.
type mockLoaderRegistry struct {
	loaders []driven.Loader
}

func (r *mockLoaderRegistry) Get(name string) (driven.Loader, error) {
	for _, l := range r.loaders {
		if l.Name() == name {
			return l, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *mockLoaderRegistry) ForFilename(filename string) (driven.Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, l := range r.loaders {
		for _, e := range l.Extensions() {
			if e == ext {
				return l, nil
			}
		}
	}
	return nil, domain.ErrUnsupportedType
}

// mockParser implements driven.FilenameParser.
type mockParser struct {
	fields map[string]string
}

func (p *mockParser) Parse(_ string) map[string]string {
	out := make(map[string]string, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

// mockCleaner implements driven.Cleaner by trimming whitespace.
type mockCleaner struct{}

func (mockCleaner) Name() string { return "trim" }

func (mockCleaner) Clean(text string, _ *domain.CleaningConfig) string {
	return strings.TrimSpace(text)
}

// mockChunker implements driven.Chunker.
type mockChunker struct {
	chunks []string
}

func (c *mockChunker) Chunk(text string) []string {
	if c.chunks != nil {
		return c.chunks
	}
	return []string{text}
}

// mockMechanism implements driven.FallbackMechanism.
type mockMechanism struct {
	out    map[string]any
	called bool
}

func (m *mockMechanism) Name() string { return "mock_mechanism" }

func (m *mockMechanism) Extract(_ context.Context, _ domain.DocumentContext) (map[string]any, bool) {
	m.called = true
	return m.out, len(m.out) > 0
}

// mockRunStore implements driven.RunStore.
type mockRunStore struct {
	mu   sync.Mutex
	runs []domain.RunRecord
	err  error
}

func (s *mockRunStore) Save(_ context.Context, run *domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.runs = append(s.runs, *run)
	return nil
}

func (s *mockRunStore) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == id {
			r := s.runs[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *mockRunStore) List(_ context.Context, filter domain.RunFilter) ([]domain.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RunRecord
	for _, r := range s.runs {
		if filter.FailedOnly && r.Succeeded() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *mockRunStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == id {
			s.runs = append(s.runs[:i], s.runs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// mockRefRegistry implements driven.ReferenceExtractorRegistry.
type mockRefRegistry map[string]driven.ReferenceExtractor

func (r mockRefRegistry) Get(name string) (driven.ReferenceExtractor, error) {
	if e, ok := r[name]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

// upperWords is a reference extractor returning the upper-case words.
type upperWords struct{}

func (upperWords) ExtractReferences(text string) []string {
	refs := []string{}
	for _, w := range strings.Fields(text) {
		if w == strings.ToUpper(w) && strings.ToUpper(w) != strings.ToLower(w) {
			refs = append(refs, w)
		}
	}
	return refs
}

func target(model string) domain.ModelTarget {
	return domain.ModelTarget{
		Provider: domain.AIProviderOpenAI,
		Model:    model,
		Endpoint: "http://localhost",
	}
}
