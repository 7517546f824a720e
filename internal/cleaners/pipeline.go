package cleaners

import (
	"strings"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.Cleaner = (*Pipeline)(nil)

// Pipeline chains cleaning steps and runs them in order.
// Each step receives the output of the previous one.
type Pipeline struct {
	steps []driven.Cleaner
}

// NewPipeline creates a cleaning pipeline with the given steps.
// Steps are executed in the order provided.
func NewPipeline(steps ...driven.Cleaner) *Pipeline {
	return &Pipeline{steps: steps}
}

// Name returns the step names joined with "+".
func (p *Pipeline) Name() string {
	return strings.Join(p.Names(), "+")
}

// Clean runs text through all steps in order.
// A nil config is treated as an empty one.
func (p *Pipeline) Clean(text string, cfg *domain.CleaningConfig) string {
	if cfg == nil {
		cfg = &domain.CleaningConfig{}
	}
	for _, step := range p.steps {
		before := len(text)
		text = step.Clean(text, cfg)
		logger.Debug("cleaner.%s: %d -> %d bytes", step.Name(), before, len(text))
	}
	return text
}

// Add appends a step to the pipeline.
func (p *Pipeline) Add(step driven.Cleaner) {
	p.steps = append(p.steps, step)
}

// Len returns the number of steps in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Names returns the step names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		names = append(names, s.Name())
	}
	return names
}
