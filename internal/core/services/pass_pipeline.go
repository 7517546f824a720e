package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// PipelineRequest is the input of one PassPipeline run.
type PipelineRequest struct {
	// Primary is tried first on every pass.
	Primary domain.ModelTarget

	// Fallback is tried once per pass after the primary attempts.
	Fallback domain.ModelTarget

	// InitialContent is the input of the first pass, usually the chunked text.
	InitialContent string

	// Document is the read-only document snapshot handed to every pass.
	Document domain.DocumentContext

	// Attempts is the number of primary attempts per pass. Values below one
	// are treated as one.
	Attempts int

	// EnableFallback allows the fallback attempt.
	EnableFallback bool
}

// PassOutcome records which model answered a pass.
type PassOutcome struct {
	Name     string
	Source   domain.OutcomeSource
	Attempts int
}

// PipelineOutcome is the merged output of every pass.
type PipelineOutcome struct {
	Output map[string]any

	// Source is fallback when any pass needed the fallback model.
	Source domain.OutcomeSource

	Passes []PassOutcome
}

// PassPipeline runs an ordered list of passes with per-pass retry and
// model fallback.
type PassPipeline struct {
	runner *PassRunner
	passes []driven.LLMPass
}

// NewPassPipeline creates a pipeline that runs passes in order.
func NewPassPipeline(runner *PassRunner, passes ...driven.LLMPass) *PassPipeline {
	return &PassPipeline{
		runner: runner,
		passes: passes,
	}
}

// Add appends a pass.
func (p *PassPipeline) Add(pass driven.LLMPass) {
	p.passes = append(p.passes, pass)
}

// Len returns the number of passes.
func (p *PassPipeline) Len() int {
	return len(p.passes)
}

// Run executes every pass in order. The output of each pass is serialised
// as JSON and handed to the next pass as its input; outputs are merged with
// later passes overwriting earlier keys. The first pass that exhausts its
// attempts aborts the run with a *domain.ExtractionFailedError.
func (p *PassPipeline) Run(ctx context.Context, req PipelineRequest) (*PipelineOutcome, error) {
	attempts := max(req.Attempts, 1)

	outcome := &PipelineOutcome{
		Output: make(map[string]any),
		Source: domain.SourcePrimary,
	}
	current := req.InitialContent

	for _, pass := range p.passes {
		logger.Section("Pass " + pass.Name())
		out, po, err := p.runPass(ctx, pass, req, current, attempts)
		if err != nil {
			return nil, err
		}

		encoded, err := json.Marshal(out)
		if err != nil {
			return nil, &domain.ExtractionFailedError{
				Pass:            pass.Name(),
				PrimaryAttempts: po.Attempts,
				Err:             fmt.Errorf("encode output: %w", err),
			}
		}
		current = string(encoded)

		maps.Copy(outcome.Output, out)
		outcome.Passes = append(outcome.Passes, po)
		if po.Source == domain.SourceFallback {
			outcome.Source = domain.SourceFallback
		}
		logger.Info("pass.%s.done: source=%s attempts=%d", po.Name, po.Source, po.Attempts)
	}

	return outcome, nil
}

// runPass tries the primary target up to attempts times, then the fallback
// target once when enabled.
func (p *PassPipeline) runPass(
	ctx context.Context,
	pass driven.LLMPass,
	req PipelineRequest,
	input string,
	attempts int,
) (map[string]any, PassOutcome, error) {
	name := pass.Name()
	var lastErr error

	primary := 0
	for primary < attempts {
		if err := ctx.Err(); err != nil {
			return nil, PassOutcome{}, exhausted(name, primary, 0, err)
		}
		primary++

		out, err := p.runner.Run(ctx, pass, req.Primary, input, req.Document)
		if err == nil {
			return out, PassOutcome{Name: name, Source: domain.SourcePrimary, Attempts: primary}, nil
		}
		lastErr = err
		logger.Warn("pass.%s.attempt: %d/%d with primary model failed: %v", name, primary, attempts, err)

		// Routing does not change between attempts.
		if errors.Is(err, domain.ErrConfiguration) {
			break
		}
	}

	if !req.EnableFallback {
		return nil, PassOutcome{}, exhausted(name, primary, 0, lastErr)
	}

	if err := ctx.Err(); err != nil {
		return nil, PassOutcome{}, exhausted(name, primary, 0, err)
	}
	logger.Info("pass.%s.fallback: trying fallback model %s", name, req.Fallback)
	out, err := p.runner.Run(ctx, pass, req.Fallback, input, req.Document)
	if err == nil {
		return out, PassOutcome{Name: name, Source: domain.SourceFallback, Attempts: primary + 1}, nil
	}
	logger.Error("pass.%s.fallback: fallback model failed: %v", name, err)
	return nil, PassOutcome{}, exhausted(name, primary, 1, err)
}

func exhausted(pass string, primary, fallback int, err error) error {
	return &domain.ExtractionFailedError{
		Pass:             pass,
		PrimaryAttempts:  primary,
		FallbackAttempts: fallback,
		Err:              err,
	}
}
