package references

import (
	"strings"

	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Built-in extractor names.
const (
	GenericRefs = "generic_refs"
	SOPIDs      = "sop_ids"
)

// GenericPatterns match URLs and file names with common extensions.
var GenericPatterns = []string{
	`https?://[^\s]+`,
	`\b\w+\.(?:pdf|docx|xlsx|pptx|txt|csv|json|xml|html|mp4|mp3|zip)\b`,
}

// SOPPatterns match controlled document codes such as QMS-0001234.
var SOPPatterns = []string{
	`(?i)\b[A-Z]{2,4}-\d{7}\b`,
}

// NewGenericExtractor returns the URL and file name extractor.
func NewGenericExtractor() *RegexExtractor {
	return NewRegexExtractor(GenericPatterns, strings.TrimSpace)
}

// NewSOPExtractor returns the document code extractor. Codes are upper-cased.
func NewSOPExtractor() *RegexExtractor {
	return NewRegexExtractor(SOPPatterns, func(m string) string {
		return strings.ToUpper(strings.TrimSpace(m))
	})
}

// RegisterDefaults registers the built-in extractors.
func RegisterDefaults(r *Registry) error {
	if err := r.Register(GenericRefs, func() driven.ReferenceExtractor { return NewGenericExtractor() }); err != nil {
		return err
	}
	return r.Register(SOPIDs, func() driven.ReferenceExtractor { return NewSOPExtractor() })
}
