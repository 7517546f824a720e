// Package watcher extracts metadata from documents as they appear in a
// directory. New and modified files with a supported extension are
// extracted once their writes settle.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driving"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is extracted.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoRoot is returned when no directory is given.
var ErrNoRoot = errors.New("watcher: root directory is required")

// Handler receives the outcome of every extraction.
type Handler func(path string, result *domain.RunResult, err error)

// Config configures a Watcher.
type Config struct {
	// Root is the directory to watch.
	Root string

	// Recursive also watches subdirectories, including ones created later.
	Recursive bool

	// Extensions restricts the files extracted, e.g. ".md". Empty accepts all.
	Extensions []string

	// Debounce coalesces bursts of events for one file.
	Debounce time.Duration

	// InitialScan extracts the files already present at start.
	InitialScan bool
}

// Watcher feeds file system events into an extraction service.
type Watcher struct {
	extractor driving.ExtractionService
	cfg       Config
	exts      []string
	handler   Handler

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithHandler sets the result handler. The default logs each outcome.
func WithHandler(h Handler) Option {
	return func(w *Watcher) {
		if h != nil {
			w.handler = h
		}
	}
}

// New creates a watcher.
func New(extractor driving.ExtractionService, cfg Config, opts ...Option) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, ErrNoRoot
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w := &Watcher{
		extractor: extractor,
		cfg:       cfg,
		exts:      normaliseExtensions(cfg.Extensions),
		handler:   logResult,
		pending:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is cancelled. Files are extracted one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	ready := make(chan string, 64)
	var initial []string

	err = filepath.WalkDir(w.cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != w.cfg.Root && !w.cfg.Recursive {
				return filepath.SkipDir
			}
			return fw.Add(path)
		}
		if w.cfg.InitialScan && w.Accept(path) {
			initial = append(initial, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Root, err)
	}
	logger.Info("watch.start: root=%s recursive=%t", w.cfg.Root, w.cfg.Recursive)

	for _, path := range initial {
		w.extract(ctx, path)
	}

	defer w.stopPending()
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch.stop: %s", w.cfg.Root)
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.onEvent(ctx, fw, event, ready)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch.error: %v", err)

		case path := <-ready:
			w.extract(ctx, path)
		}
	}
}

func (w *Watcher) onEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event, ready chan<- string) {
	if event.Has(fsnotify.Create) && w.cfg.Recursive && isDir(event.Name) {
		if err := fw.Add(event.Name); err != nil {
			logger.Warn("watch.add: %s: %v", event.Name, err)
		}
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.Accept(event.Name) {
		return
	}
	w.schedule(ctx, event.Name, ready)
}

// schedule (re)starts the quiet period for path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) extract(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	logger.Debug("watch.extract: %s", path)
	result, err := w.extractor.Extract(ctx, domain.RawSource{
		Filename: filepath.Base(path),
		Path:     path,
	})
	w.handler(path, result, err)
}

// Accept reports whether path should be extracted. Hidden files and office
// lock files are skipped.
func (w *Watcher) Accept(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	if len(w.exts) == 0 {
		return true
	}
	return slices.Contains(w.exts, strings.ToLower(filepath.Ext(base)))
}

func normaliseExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func logResult(path string, result *domain.RunResult, err error) {
	if err != nil {
		logger.Error("watch.failed: %s: %v", path, err)
		return
	}
	logger.Info("watch.done: %s run=%s source=%s", path, result.RunID, result.Source)
}
