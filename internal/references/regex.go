package references

import (
	"regexp"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// Ensure RegexExtractor implements the interface.
var _ driven.ReferenceExtractor = (*RegexExtractor)(nil)

// StandardizeFunc normalises one match.
type StandardizeFunc func(match string) string

// RegexExtractor applies an ordered list of patterns and returns the
// deduplicated union of all matches in first-seen order.
type RegexExtractor struct {
	patterns    []*regexp.Regexp
	standardize StandardizeFunc
	invalid     bool
}

// NewRegexExtractor compiles the patterns. An invalid pattern does not fail
// construction; the extractor then yields empty results.
func NewRegexExtractor(patterns []string, standardize StandardizeFunc) *RegexExtractor {
	e := &RegexExtractor{standardize: standardize}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			logger.Warn("references: invalid pattern %q: %v", p, err)
			e.invalid = true
			continue
		}
		e.patterns = append(e.patterns, re)
	}
	return e
}

// ExtractReferences returns the normalised references found in text.
// The result is never nil. Any failure yields an empty result.
func (e *RegexExtractor) ExtractReferences(text string) (refs []string) {
	if e.invalid {
		return []string{}
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("references: extraction failed: %v", r)
			refs = []string{}
		}
	}()

	var matches []string
	for _, re := range e.patterns {
		for _, m := range re.FindAllString(text, -1) {
			if e.standardize != nil {
				m = e.standardize(m)
			}
			if m != "" {
				matches = append(matches, m)
			}
		}
	}
	return domain.UniqueStrings(matches)
}
