// Package postprocessors provides record finalisation steps run after
// extraction output has been merged.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.RecordProcessorPipeline = (*Pipeline)(nil)

// Pipeline chains multiple RecordProcessors and runs them in order.
// It implements the RecordProcessorPipeline interface.
type Pipeline struct {
	processors []driven.RecordProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.RecordProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the record through all processors in order.
// Each processor receives the record returned by the previous one.
// The caller's record is never modified.
func (p *Pipeline) Process(ctx context.Context, rec *domain.Record, fc domain.FinalizeContext) (*domain.Record, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: record is nil", domain.ErrInvalidInput)
	}

	out := rec.Clone()
	for _, processor := range p.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		out, err = processor.Process(ctx, out, fc)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return out, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.RecordProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// Names returns the processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}
