package driven

// ReferenceExtractor finds normalised reference tokens in text.
// Results are deduplicated; failures yield an empty result, never an error.
type ReferenceExtractor interface {
	ExtractReferences(text string) []string
}

// ReferenceExtractorRegistry resolves extractors by name.
// A missing name is reported as domain.ErrNotFound; callers skip extraction.
type ReferenceExtractorRegistry interface {
	Get(name string) (ReferenceExtractor, error)
}
