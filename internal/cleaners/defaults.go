package cleaners

import "github.com/custodia-labs/docmeta/internal/core/ports/driven"

// Step names.
const (
	StepPatterns            = "patterns"
	StepMarkers             = "markers"
	StepBreaks              = "breaks"
	StepMarkdown            = "markdown"
	StepUnicode             = "unicode"
	StepSOPDocVersion       = "sop_doc_version"
	StepSOPUncontrolledCopy = "sop_uncontrolled_copy"
	StepSOPFrequentLines    = "sop_frequent_lines"
)

// RegisterDefaults registers all built-in steps with the registry.
// Call this during application initialisation to enable standard steps.
func RegisterDefaults(r *Registry) error {
	builtins := map[string]BuilderFunc{
		StepPatterns:            func() driven.Cleaner { return NewPatternRemover() },
		StepMarkers:             func() driven.Cleaner { return NewMarkerReplacer() },
		StepBreaks:              func() driven.Cleaner { return NewExcessBreakRemover() },
		StepMarkdown:            func() driven.Cleaner { return NewMarkdownConverter() },
		StepUnicode:             func() driven.Cleaner { return NewUnicodeNormalizer() },
		StepSOPDocVersion:       func() driven.Cleaner { return NewDocVersionRemover() },
		StepSOPUncontrolledCopy: func() driven.Cleaner { return NewUncontrolledCopyRemover() },
		StepSOPFrequentLines:    func() driven.Cleaner { return NewFrequentLineRemover() },
	}
	for name, builder := range builtins {
		if err := r.Register(name, builder); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRegistry returns a registry with every built-in step registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Built-in names are distinct, registration cannot fail.
	_ = RegisterDefaults(r)
	return r
}
