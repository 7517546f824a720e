package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/docmeta/internal/adapters/driven/ai"
	"github.com/custodia-labs/docmeta/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docmeta/internal/adapters/driven/export"
	"github.com/custodia-labs/docmeta/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmeta/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docmeta/internal/adapters/driving/cli"
	"github.com/custodia-labs/docmeta/internal/chunkers/headtail"
	"github.com/custodia-labs/docmeta/internal/cleaners"
	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/core/ports/driving"
	"github.com/custodia-labs/docmeta/internal/core/services"
	"github.com/custodia-labs/docmeta/internal/loaders"
	"github.com/custodia-labs/docmeta/internal/logger"
	"github.com/custodia-labs/docmeta/internal/plugins"
	"github.com/custodia-labs/docmeta/internal/plugins/builtin"
	"github.com/custodia-labs/docmeta/internal/postprocessors"
	"github.com/custodia-labs/docmeta/internal/references"
)

// app wires the driven adapters to the core services.
type app struct {
	lookup   domain.LookupFunc
	settings *services.SettingsService
	prompts  *file.PromptStore
	loaders  *loaders.Registry
	store    driven.RunStore
	runs     *services.RunService
	closers  []io.Closer

	routerOnce sync.Once
	router     *ai.Router
}

func newApp(lookup domain.LookupFunc) (*app, error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	a := &app{
		lookup:   lookup,
		settings: services.NewSettingsService(configStore, lookup),
		prompts:  prompts,
		loaders:  loaders.DefaultRegistry(),
	}

	backend, _ := configStore.String(services.KeyStorageBackend)
	switch backend {
	case "", "sqlite":
		path, _ := configStore.String(services.KeyStoragePath)
		store, err := sqlite.NewStore(path)
		if err != nil {
			return nil, fmt.Errorf("open run store: %w", err)
		}
		a.store = store
		a.closers = append(a.closers, store)
	case "memory":
		a.store = memory.NewRunStore()
	default:
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, backend)
	}

	a.runs = services.NewRunService(a.store, export.NewXLSXExporter(), export.NewJSONExporter())
	return a, nil
}

func (a *app) services() cli.Services {
	return cli.Services{
		NewExtractor: a.newExtractor,
		NewBatch: func(extractor driving.ExtractionService, workers int) driving.BatchService {
			return services.NewBatchExtractor(extractor, workers)
		},
		Runs:       a.runs,
		Settings:   a.settings,
		Prompts:    a.prompts,
		Profiles:   builtin.Registry().Names(),
		Extensions: a.loaders.Extensions(),
		Formats:    a.runs.Formats(),
		Lookup:     a.lookup,
	}
}

// modelClient returns the shared router. Its rate limits come from the
// configuration read on first use.
func (a *app) modelClient(cfg domain.ExtractionConfig) *ai.Router {
	a.routerOnce.Do(func() {
		a.router = ai.NewRouter(ai.ClientConfig{
			Timeout:           cfg.PassTimeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		a.closers = append(a.closers, a.router)
	})
	return a.router
}

// newExtractor builds the pipeline of one profile from the current settings.
func (a *app) newExtractor(opts cli.ExtractorOptions) (driving.ExtractionService, error) {
	cfg, err := a.settings.Extraction()
	if err != nil {
		return nil, err
	}

	name := opts.Profile
	if name == "" {
		name = cfg.Profile
	}

	chunker, err := headtail.FromConfig(cfg.Chunking)
	if err != nil {
		return nil, err
	}

	profile, err := builtin.Registry().Build(name, plugins.Deps{
		Prompts:    a.prompts,
		References: references.Default,
		Chunker:    chunker,
	})
	if err != nil {
		return nil, err
	}

	steps := cfg.CleaningSteps
	if len(steps) == 0 {
		steps = profile.CleaningSteps
	}
	cleaner, err := cleaners.DefaultRegistry().BuildPipeline(steps)
	if err != nil {
		return nil, err
	}

	fieldMap := resolveFieldMap(opts.FieldMap, cfg.FieldMap, profile.FieldMap)

	runner := services.NewPassRunner(
		a.modelClient(cfg),
		services.NewFieldNormalizer(references.Default),
		services.WithTemperature(cfg.Temperature),
		services.WithMaxTokens(cfg.MaxTokens),
		services.WithPassTimeout(cfg.PassTimeout),
	)

	logger.Debug("app.extractor: profile=%s steps=%v fields=%d", profile.Name, steps, len(fieldMap))

	return services.NewPipeline(services.PipelineDeps{
		Profile:            profile.Name,
		Config:             cfg,
		Loaders:            a.loaders,
		Parser:             profile.Parser,
		Cleaner:            cleaner,
		Chunker:            chunker,
		Passes:             services.NewPassPipeline(runner, profile.Passes...),
		Fallback:           profile.Fallback,
		Finalizer:          postprocessors.DefaultPipeline(references.Default),
		ReferenceExtractor: profile.ReferenceExtractor,
		Injected:           profile.Injected,
		FieldMap:           fieldMap,
		Runs:               a.store,
	}, services.WithLookup(a.lookup)), nil
}

// resolveFieldMap picks the output projection: the command line map, then
// the configured one, then the profile default.
func resolveFieldMap(flag, config, profile domain.FieldMap) domain.FieldMap {
	switch {
	case len(flag) > 0:
		return flag
	case len(config) > 0:
		return config
	}
	return profile
}

// Close releases the run store and model clients.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
