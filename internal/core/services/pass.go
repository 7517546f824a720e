package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/jsonrepair"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// PassRunner executes a single LLM pass against one model target.
type PassRunner struct {
	client      driven.ModelClient
	normalizer  *FieldNormalizer
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// PassRunnerOption configures a PassRunner.
type PassRunnerOption func(*PassRunner)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) PassRunnerOption {
	return func(r *PassRunner) {
		r.temperature = t
	}
}

// WithMaxTokens caps the model response length.
func WithMaxTokens(n int) PassRunnerOption {
	return func(r *PassRunner) {
		if n > 0 {
			r.maxTokens = n
		}
	}
}

// WithPassTimeout bounds each model call. Zero disables the bound.
func WithPassTimeout(d time.Duration) PassRunnerOption {
	return func(r *PassRunner) {
		r.timeout = d
	}
}

// NewPassRunner creates a pass runner. A nil normalizer disables
// reference extraction but nulls are still normalised.
func NewPassRunner(client driven.ModelClient, normalizer *FieldNormalizer, opts ...PassRunnerOption) *PassRunner {
	if normalizer == nil {
		normalizer = NewFieldNormalizer(nil)
	}
	r := &PassRunner{
		client:     client,
		normalizer: normalizer,
		maxTokens:  domain.DefaultMaxTokens,
		timeout:    domain.DefaultPassTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes pass once with target and returns the normalised output.
// Errors are a *domain.ConfigurationError for incomplete routing, a
// *domain.ParseError for unusable model output, or the client error.
func (r *PassRunner) Run(
	ctx context.Context,
	pass driven.LLMPass,
	target domain.ModelTarget,
	input string,
	doc domain.DocumentContext,
) (map[string]any, error) {
	if r.client == nil {
		return nil, domain.ErrLLMUnavailable
	}

	messages, err := pass.Messages(input, doc)
	if err != nil {
		return nil, fmt.Errorf("pass %s: build messages: %w", pass.Name(), err)
	}

	if err := target.Validate(); err != nil {
		var ce *domain.ConfigurationError
		if errors.As(err, &ce) {
			return nil, &domain.ConfigurationError{Pass: pass.Name(), Field: ce.Field}
		}
		return nil, err
	}

	rawSchema := pass.Schema()
	var schema *jsonrepair.Schema
	if rawSchema != nil {
		schema, err = jsonrepair.Cached(rawSchema)
		if err != nil {
			return nil, fmt.Errorf("pass %s: %w", pass.Name(), err)
		}
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logger.Debug("pass.%s.call: target=%s", pass.Name(), target)
	start := time.Now()
	text, err := r.client.Generate(callCtx, messages, driven.GenerateOptions{
		Target:         target,
		MaxTokens:      r.maxTokens,
		Temperature:    r.temperature,
		ResponseSchema: rawSchema,
		SchemaName:     pass.Name(),
	})
	if err != nil {
		return nil, fmt.Errorf("pass %s: %w", pass.Name(), err)
	}
	logger.Debug("pass.%s.response: %d chars in %s", pass.Name(), len(text), time.Since(start).Round(time.Millisecond))

	out, err := jsonrepair.ParseAndValidate(text, schema)
	if err != nil {
		return nil, err
	}

	out = r.normalizer.Normalize(out, schema)
	if rp, ok := pass.(driven.ReferenceFieldsPass); ok {
		extractor, fields := rp.ReferenceFields()
		out = r.normalizer.ApplyReferences(out, extractor, fields)
	}
	return out, nil
}
