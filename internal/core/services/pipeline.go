package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/core/ports/driving"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.ExtractionService = (*Pipeline)(nil)

// errEmptyOutput is the cause recorded when no extraction produced fields.
var errEmptyOutput = errors.New("extraction produced no fields")

// RunObserver is notified of every state the run enters. The first call
// of a run has from equal to to.
type RunObserver interface {
	OnTransition(from, to domain.RunState)
}

// RunObserverFunc adapts a function to RunObserver.
type RunObserverFunc func(from, to domain.RunState)

// OnTransition calls f.
func (f RunObserverFunc) OnTransition(from, to domain.RunState) {
	f(from, to)
}

// PipelineDeps holds the collaborators of a Pipeline.
// Loaders, Parser, Cleaner, Chunker and Passes are required.
type PipelineDeps struct {
	// Profile names the extraction profile, recorded with each run.
	Profile string

	Config domain.ExtractionConfig

	Loaders driven.LoaderRegistry
	Parser  driven.FilenameParser
	Cleaner driven.Cleaner
	Chunker driven.Chunker
	Passes  *PassPipeline

	// Fallback runs when the passes fail or return nothing. Optional.
	Fallback driven.FallbackMechanism

	// Finalizer post-processes the merged record. Optional.
	Finalizer driven.RecordProcessorPipeline

	// ReferenceExtractor names the extractor used by the finalizer.
	ReferenceExtractor string

	// Injected is stamped onto every record after the merge.
	Injected domain.InjectedMetadata

	// FieldMap projects the record onto output names. Callers resolve it
	// from their overrides and the profile default; Config.FieldMap is not
	// consulted here.
	FieldMap domain.FieldMap

	// Runs records every run. Optional.
	Runs driven.RunStore
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithObserver registers a state observer.
func WithObserver(o RunObserver) PipelineOption {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithLookup sets the function used to resolve model routing variables.
func WithLookup(lookup domain.LookupFunc) PipelineOption {
	return func(p *Pipeline) {
		p.lookup = lookup
	}
}

// Pipeline drives one document through loading, cleaning, extraction,
// post-processing and projection.
type Pipeline struct {
	deps     PipelineDeps
	mapper   *SchemaMapper
	observer RunObserver
	lookup   domain.LookupFunc
	now      func() time.Time
}

// NewPipeline creates an orchestrator.
func NewPipeline(deps PipelineDeps, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		deps:   deps,
		mapper: NewSchemaMapper(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract runs the pipeline for one source.
func (p *Pipeline) Extract(ctx context.Context, src domain.RawSource) (*domain.RunResult, error) {
	return p.Run(ctx, src)
}

// runState tracks the states a run has entered.
type runState struct {
	id       string
	states   []domain.RunState
	observer RunObserver
}

func (r *runState) current() domain.RunState {
	if len(r.states) == 0 {
		return domain.RunStateLoaded
	}
	return r.states[len(r.states)-1]
}

func (r *runState) enter(to domain.RunState) {
	from := to
	if len(r.states) > 0 {
		from = r.states[len(r.states)-1]
	}
	r.states = append(r.states, to)
	logger.Debug("pipeline.state: run=%s %s -> %s", r.id, from, to)
	if r.observer != nil {
		r.observer.OnTransition(from, to)
	}
}

// Run executes the state machine for one source. On failure no metadata is
// returned and the error is a *domain.RunFailedError naming the stage that
// failed.
func (p *Pipeline) Run(ctx context.Context, src domain.RawSource) (*domain.RunResult, error) {
	started := p.now()
	rs := &runState{id: uuid.NewString(), observer: p.observer}

	logger.Info("pipeline.run.start: run=%s file=%s profile=%s", rs.id, src.Filename, p.deps.Profile)
	result, doc, err := p.run(ctx, src, rs)
	if err != nil {
		logger.Error("pipeline.run.failed: run=%s file=%s: %v", rs.id, src.Filename, err)
	} else {
		logger.Info("pipeline.run.done: run=%s file=%s source=%s", rs.id, src.Filename, result.Source)
	}

	p.record(ctx, rs, src, doc, result, err, started)
	return result, err
}

//nolint:gocyclo // Orchestration function with necessary sequential steps
func (p *Pipeline) run(ctx context.Context, src domain.RawSource, rs *runState) (*domain.RunResult, *domain.Document, error) {
	cfg := p.deps.Config

	fail := func(doc *domain.Document, stage domain.RunState, err error) (*domain.RunResult, *domain.Document, error) {
		rs.enter(domain.RunStateFailed)
		rfe := &domain.RunFailedError{Filename: src.Filename, State: stage, Err: err}
		if doc != nil {
			rfe.DocumentID = doc.ID
		}
		return nil, doc, rfe
	}

	// 1. Load
	if err := ctx.Err(); err != nil {
		return fail(nil, domain.RunStateLoaded, err)
	}
	doc, err := p.load(ctx, src)
	if err != nil {
		return fail(nil, domain.RunStateLoaded, err)
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	rs.enter(domain.RunStateLoaded)

	// 2. Parse filename
	if err := ctx.Err(); err != nil {
		return fail(doc, domain.RunStateFilenameParsed, err)
	}
	var fields map[string]string
	if p.deps.Parser != nil {
		fields = p.deps.Parser.Parse(doc.Filename)
	}
	doc.ApplyInitialMetadata(fields, cfg.DefaultLanguage)
	rs.enter(domain.RunStateFilenameParsed)
	logger.Debug("pipeline.filename: %s -> %v", doc.Filename, fields)

	// 3. Clean
	if err := ctx.Err(); err != nil {
		return fail(doc, domain.RunStateCleaned, err)
	}
	text := doc.TextContent
	if p.deps.Cleaner != nil {
		cleaning := cfg.Cleaning.Clone()
		text = p.deps.Cleaner.Clean(text, &cleaning)
	}
	if strings.TrimSpace(text) == "" {
		return fail(doc, domain.RunStateCleaned, fmt.Errorf("%w: text is empty after cleaning", domain.ErrInvalidInput))
	}
	doc.TextContent = text
	rs.enter(domain.RunStateCleaned)

	// 4. Chunk
	if err := ctx.Err(); err != nil {
		return fail(doc, domain.RunStateChunked, err)
	}
	content := text
	if p.deps.Chunker != nil {
		chunks := p.deps.Chunker.Chunk(text)
		if len(chunks) == 0 {
			return fail(doc, domain.RunStateChunked, fmt.Errorf("%w: chunker returned no chunks", domain.ErrInvalidInput))
		}
		content = chunks[0]
	}
	rs.enter(domain.RunStateChunked)

	// 5. Extract; the document is read-only from here on
	docCtx := doc.Context()
	rs.enter(domain.RunStateExtracting)
	output, source, err := p.extract(ctx, docCtx, content)
	if err != nil {
		if ctx.Err() != nil {
			return fail(doc, domain.RunStateExtracting, err)
		}
		if p.deps.Fallback == nil {
			return fail(doc, domain.RunStateExtracting, err)
		}
		rs.enter(domain.RunStateFallbackExtracting)
		logger.Warn("pipeline.fallback: run=%s using %s: %v", rs.id, p.deps.Fallback.Name(), err)
		out, ok := p.deps.Fallback.Extract(ctx, docCtx)
		if !ok || len(out) == 0 {
			return fail(doc, domain.RunStateFallbackExtracting, err)
		}
		output, source = out, domain.SourceMechanism
	} else {
		rs.enter(domain.RunStateExtracted)
	}

	// 6. Merge, inject and finalize
	if err := ctx.Err(); err != nil {
		return fail(doc, domain.RunStatePostProcessed, err)
	}
	rec, err := p.merge(fields, output)
	if err != nil {
		return fail(doc, domain.RunStatePostProcessed, err)
	}
	if p.deps.Finalizer != nil {
		rec, err = p.deps.Finalizer.Process(ctx, rec, domain.FinalizeContext{
			Document:           docCtx,
			FilenameFields:     fields,
			ReferenceExtractor: p.deps.ReferenceExtractor,
		})
		if err != nil {
			return fail(doc, domain.RunStatePostProcessed, err)
		}
	}
	rs.enter(domain.RunStatePostProcessed)

	// 7. Project
	if err := ctx.Err(); err != nil {
		return fail(doc, domain.RunStateMapped, err)
	}
	mapped := p.mapper.Map(rec, p.deps.FieldMap)
	rs.enter(domain.RunStateMapped)

	return &domain.RunResult{
		RunID:      rs.id,
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Output:     mapped,
		Record:     rec,
		Source:     source,
		States:     rs.states,
	}, doc, nil
}

func (p *Pipeline) load(ctx context.Context, src domain.RawSource) (*domain.Document, error) {
	if p.deps.Loaders == nil {
		return nil, &domain.LoadError{Filename: src.Filename, Err: errors.New("no loaders configured")}
	}

	var (
		loader driven.Loader
		err    error
	)
	if name := p.deps.Config.Loader; name != "" {
		loader, err = p.deps.Loaders.Get(name)
	} else {
		loader, err = p.deps.Loaders.ForFilename(src.Filename)
	}
	if err != nil {
		return nil, &domain.LoadError{Filename: src.Filename, Err: err}
	}

	doc, err := loader.Load(ctx, src)
	if err != nil {
		var le *domain.LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, &domain.LoadError{Filename: src.Filename, Err: err}
	}
	return doc, nil
}

// extract runs the pass pipeline with model targets resolved for the
// document language. An empty output counts as a failure.
func (p *Pipeline) extract(
	ctx context.Context,
	doc domain.DocumentContext,
	content string,
) (map[string]any, domain.OutcomeSource, error) {
	if p.deps.Passes == nil || p.deps.Passes.Len() == 0 {
		return nil, "", errEmptyOutput
	}

	cfg := p.deps.Config
	outcome, err := p.deps.Passes.Run(ctx, PipelineRequest{
		Primary:        cfg.Primary.Resolve(doc.Language, p.lookup),
		Fallback:       cfg.Fallback.Resolve(doc.Language, p.lookup),
		InitialContent: content,
		Document:       doc,
		Attempts:       cfg.Attempts,
		EnableFallback: cfg.EnableFallback,
	})
	if err != nil {
		return nil, "", err
	}
	if len(outcome.Output) == 0 {
		return nil, "", errEmptyOutput
	}
	return outcome.Output, outcome.Source, nil
}

// merge builds the record from filename fields and extraction output.
// Extracted keys that the filename already provides are dropped, then the
// profile's static metadata is stamped on.
func (p *Pipeline) merge(fields map[string]string, output map[string]any) (*domain.Record, error) {
	rec := domain.NewRecord()

	base := make(map[string]any, len(fields))
	for k, v := range fields {
		base[k] = v
	}
	if err := rec.Merge(base); err != nil {
		return nil, fmt.Errorf("merge filename fields: %w", err)
	}

	extracted := make(map[string]any, len(output))
	for k, v := range output {
		if _, ok := fields[k]; ok {
			logger.Debug("pipeline.merge: dropping extracted %s, filename provides it", k)
			continue
		}
		extracted[k] = v
	}
	if err := rec.Merge(extracted); err != nil {
		return nil, fmt.Errorf("merge extracted fields: %w", err)
	}

	for k, v := range p.deps.Injected.Fields() {
		if err := rec.SetString(k, v); err != nil {
			return nil, fmt.Errorf("inject %s: %w", k, err)
		}
	}
	return rec, nil
}

// record saves the run history. Failures to save are logged, never returned.
func (p *Pipeline) record(
	ctx context.Context,
	rs *runState,
	src domain.RawSource,
	doc *domain.Document,
	result *domain.RunResult,
	runErr error,
	started time.Time,
) {
	if p.deps.Runs == nil {
		return
	}

	rec := &domain.RunRecord{
		ID:         rs.id,
		Filename:   src.Filename,
		Profile:    p.deps.Profile,
		State:      rs.current(),
		StartedAt:  started,
		FinishedAt: p.now(),
	}
	if doc != nil {
		rec.DocumentID = doc.ID
	}
	if result != nil {
		rec.Source = result.Source
		rec.Output = result.Output
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if err := p.deps.Runs.Save(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("pipeline.record: run=%s: %v", rs.id, err)
	}
}
