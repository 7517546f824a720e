package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

type mockExtractor struct {
	mu      sync.Mutex
	sources []domain.RawSource
	err     error
}

func (m *mockExtractor) Extract(_ context.Context, src domain.RawSource) (*domain.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, src)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RunResult{RunID: "run-" + src.Filename, Filename: src.Filename}, nil
}

func (m *mockExtractor) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sources)
}

func (m *mockExtractor) filenames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.sources))
	for i, s := range m.sources {
		names[i] = s.Filename
	}
	return names
}

type outcome struct {
	path string
	err  error
}

type recorder struct {
	mu       sync.Mutex
	outcomes []outcome
}

func (r *recorder) handle(path string, _ *domain.RunResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome{path: path, err: err})
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outcomes)
}

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	// Give the watcher time to register the root.
	time.Sleep(100 * time.Millisecond)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNew_RequiresRoot(t *testing.T) {
	_, err := New(&mockExtractor{}, Config{})
	assert.ErrorIs(t, err, ErrNoRoot)
}

func TestNew_DefaultDebounce(t *testing.T) {
	w, err := New(&mockExtractor{}, Config{Root: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.cfg.Debounce)
}

func TestWatcher_Accept(t *testing.T) {
	w, err := New(&mockExtractor{}, Config{Root: "/docs", Extensions: []string{"md", ".TXT", " "}})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{path: "/docs/a.md", want: true},
		{path: "/docs/b.txt", want: true},
		{path: "/docs/C.MD", want: true},
		{path: "/docs/d.pdf", want: false},
		{path: "/docs/.hidden.md", want: false},
		{path: "/docs/~$lock.md", want: false},
		{path: "/docs/noext", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Accept(tt.path))
		})
	}
}

func TestWatcher_Accept_NoExtensionsAcceptsAll(t *testing.T) {
	w, err := New(&mockExtractor{}, Config{Root: "/docs"})
	require.NoError(t, err)

	assert.True(t, w.Accept("/docs/anything.bin"))
	assert.False(t, w.Accept("/docs/.DS_Store"))
}

func TestWatcher_ExtractsNewFile(t *testing.T) {
	dir := t.TempDir()
	extractor := &mockExtractor{}
	rec := &recorder{}
	w, err := New(extractor, Config{
		Root:       dir,
		Extensions: []string{".md"},
		Debounce:   20 * time.Millisecond,
	}, WithHandler(rec.handle))
	require.NoError(t, err)
	startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "ignored.pdf"), "x")
	writeFile(t, filepath.Join(dir, "report.md"), "# Report")

	require.Eventually(t, func() bool { return rec.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"report.md"}, extractor.filenames())
	assert.Equal(t, filepath.Join(dir, "report.md"), extractor.sources[0].Path)
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	extractor := &mockExtractor{}
	rec := &recorder{}
	w, err := New(extractor, Config{Root: dir, Debounce: 200 * time.Millisecond}, WithHandler(rec.handle))
	require.NoError(t, err)
	startWatcher(t, w)

	path := filepath.Join(dir, "notes.txt")
	for i := 0; i < 5; i++ {
		writeFile(t, path, "line")
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return rec.len() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, extractor.count())
}

func TestWatcher_InitialScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "a")
	writeFile(t, filepath.Join(dir, "b.md"), "b")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub", "c.md"), "c")

	extractor := &mockExtractor{}
	rec := &recorder{}
	w, err := New(extractor, Config{Root: dir, InitialScan: true}, WithHandler(rec.handle))
	require.NoError(t, err)
	startWatcher(t, w)

	require.Eventually(t, func() bool { return rec.len() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"a.md", "b.md"}, extractor.filenames())
}

func TestWatcher_RecursiveWatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	extractor := &mockExtractor{}
	rec := &recorder{}
	w, err := New(extractor, Config{
		Root:      dir,
		Recursive: true,
		Debounce:  20 * time.Millisecond,
	}, WithHandler(rec.handle))
	require.NoError(t, err)
	startWatcher(t, w)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(sub, "deep.md"), "deep")

	require.Eventually(t, func() bool { return rec.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"deep.md"}, extractor.filenames())
}

func TestWatcher_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	extractor := &mockExtractor{err: errors.New("model unavailable")}
	rec := &recorder{}
	w, err := New(extractor, Config{Root: dir, Debounce: 20 * time.Millisecond}, WithHandler(rec.handle))
	require.NoError(t, err)
	startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "x.md"), "x")

	require.Eventually(t, func() bool { return rec.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.EqualError(t, rec.outcomes[0].err, "model unavailable")
}

func TestWatcher_MissingRoot(t *testing.T) {
	w, err := New(&mockExtractor{}, Config{Root: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	err = w.Run(context.Background())

	assert.Error(t, err)
}
