package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/docmeta/internal/adapters/driving/watcher"
	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driving"
)

// mockExtractor is a mock implementation of driving.ExtractionService.
// Files listed in failures fail; every other file succeeds.
type mockExtractor struct {
	mu       sync.Mutex
	sources  []domain.RawSource
	failures map[string]error
}

func (m *mockExtractor) Extract(_ context.Context, src domain.RawSource) (*domain.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, src)

	if err, ok := m.failures[src.Filename]; ok {
		return nil, &domain.RunFailedError{Filename: src.Filename, State: domain.RunStateFailed, Err: err}
	}
	return &domain.RunResult{
		RunID:      "run-" + src.Filename,
		DocumentID: "doc-" + src.Filename,
		Filename:   src.Filename,
		Source:     domain.SourcePrimary,
		Output:     map[string]any{"Name": src.Filename, "Keywords": []string{"alpha", "beta"}},
	}, nil
}

// seqBatch runs sources one after another.
type seqBatch struct {
	extractor driving.ExtractionService
	workers   int
}

func (b *seqBatch) ExtractAll(ctx context.Context, sources []domain.RawSource) []driving.BatchItem {
	items := make([]driving.BatchItem, len(sources))
	for i, src := range sources {
		res, err := b.extractor.Extract(ctx, src)
		items[i] = driving.BatchItem{Source: src, Result: res, Err: err}
	}
	return items
}

// mockRunService is a mock implementation of driving.RunService.
type mockRunService struct {
	runs    []domain.RunRecord
	err     error
	filter  domain.RunFilter
	deleted string
	format  string
	columns []string
}

func (m *mockRunService) List(_ context.Context, filter domain.RunFilter) ([]domain.RunRecord, error) {
	m.filter = filter
	return m.runs, m.err
}

func (m *mockRunService) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
}

func (m *mockRunService) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}

func (m *mockRunService) Export(_ context.Context, filter domain.RunFilter, format string, columns []string) ([]byte, error) {
	m.filter = filter
	m.format = format
	m.columns = columns
	if m.err != nil {
		return nil, m.err
	}
	if format != "xlsx" && format != "json" {
		return nil, fmt.Errorf("%w: export format %q", domain.ErrUnsupportedType, format)
	}
	return []byte("exported:" + format), nil
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	cfg    domain.ExtractionConfig
	values map[string]any
	err    error
}

func (m *mockSettingsService) Extraction() (domain.ExtractionConfig, error) {
	return m.cfg, m.err
}

func (m *mockSettingsService) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Unset(key string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.values, key)
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"extraction.attempts", "models.primary.model"}
}

func (m *mockSettingsService) GetDefaults() domain.ExtractionConfig {
	return domain.DefaultExtractionConfig()
}

// mockPromptCatalog is a mock implementation of PromptCatalog.
type mockPromptCatalog struct {
	prompts map[string]string
}

func (m *mockPromptCatalog) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockPromptCatalog) Reload() {}

func (m *mockPromptCatalog) Names() []string {
	return []string{"generic_summary", "sop_identity"}
}

func (m *mockPromptCatalog) Path(name string) string {
	return "/prompts/" + name + ".txt"
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	extractor *mockExtractor
	runs      *mockRunService
	settings  *mockSettingsService
	opts      []ExtractorOptions
}

// setupTestServices installs mock services and returns a cleanup function
// restoring the package state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		extractor: &mockExtractor{failures: map[string]error{}},
		runs:      &mockRunService{},
		settings: &mockSettingsService{
			cfg:    domain.DefaultExtractionConfig(),
			values: map[string]any{},
		},
	}

	SetServices(Services{
		NewExtractor: func(opts ExtractorOptions) (driving.ExtractionService, error) {
			ts.opts = append(ts.opts, opts)
			return ts.extractor, nil
		},
		NewBatch: func(extractor driving.ExtractionService, workers int) driving.BatchService {
			return &seqBatch{extractor: extractor, workers: workers}
		},
		Runs:       ts.runs,
		Settings:   ts.settings,
		Prompts:    &mockPromptCatalog{prompts: map[string]string{"generic_summary": "Summarise in %s."}},
		Profiles:   []string{"generic", "sop"},
		Extensions: []string{".json", ".md", ".txt"},
		Formats:    []string{"json", "xlsx"},
		Lookup:     func(string) (string, bool) { return "", false },
	})

	return ts, func() {
		SetServices(Services{})
		isTerminal = terminal
		resetFlags()
	}
}

var terminal = isTerminal

func resetFlags() {
	verbose = false
	extractProfile = ""
	extractFieldMap = ""
	extractDocID = ""
	extractJSON = false
	batchWorkers = 0
	batchRecursive = false
	watchRecursive = false
	watchInitial = false
	watchDebounce = watcher.DefaultDebounce
	runsFilename = ""
	runsFailed = false
	runsLimit = 20
	runsJSON = false
	exportFormat = "xlsx"
	exportColumns = nil
	exportOutput = ""
	configJSON = false
	rootCmd.SetArgs(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
}

// fakeTerminal makes every writer look like a terminal.
func fakeTerminal() {
	isTerminal = func(io.Writer) bool { return true }
}
