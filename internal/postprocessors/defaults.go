package postprocessors

import (
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Built-in processor names.
const (
	ProcessorReferences        = "references"
	ProcessorFilenameAuthority = "filename_authority"
)

// DefaultOrder is the finalisation order applied to every record.
var DefaultOrder = []string{ProcessorReferences, ProcessorFilenameAuthority}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry, refs driven.ReferenceExtractorRegistry) {
	r.Register(ProcessorReferences, func(cfg map[string]any) (driven.RecordProcessor, error) {
		return buildReferences(refs, cfg)
	})
	r.Register(ProcessorFilenameAuthority, func(_ map[string]any) (driven.RecordProcessor, error) {
		return NewFilenameAuthority(), nil
	})
}

// DefaultPipeline builds the default finalisation pipeline.
func DefaultPipeline(refs driven.ReferenceExtractorRegistry) *Pipeline {
	r := NewRegistry()
	RegisterDefaults(r, refs)
	p, err := r.BuildPipeline(DefaultOrder, nil)
	if err != nil {
		// Built-in names always resolve.
		panic(err)
	}
	return p
}

// buildReferences creates a references processor from generic config.
// Supported config keys:
//   - fields ([]string): Reference fields to re-extract (default: all reference fields)
func buildReferences(refs driven.ReferenceExtractorRegistry, cfg map[string]any) (driven.RecordProcessor, error) {
	var opts []ReferencesOption
	if fields := getStringsFromConfig(cfg, "fields"); len(fields) > 0 {
		opts = append(opts, WithFields(fields...))
	}
	return NewReferences(refs, opts...), nil
}

// getStringsFromConfig safely extracts a string list from generic config map.
// Handles []string and []any types that may come from TOML/JSON parsing.
func getStringsFromConfig(cfg map[string]any, key string) []string {
	val, ok := cfg[key]
	if !ok {
		return nil
	}

	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
