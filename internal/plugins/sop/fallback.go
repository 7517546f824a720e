package sop

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/logger"
	"github.com/custodia-labs/docmeta/internal/references"
)

// Ensure RegexFallback implements the interface.
var _ driven.FallbackMechanism = (*RegexFallback)(nil)

// headingPattern matches a markdown or numbered section heading and an
// optional inline body: "## 1. Purpose", "2 SCOPE", "Purpose: text".
var headingPattern = regexp.MustCompile(
	`^\s*(?:#{1,6}\s*)?(?:\d+(?:\.\d+)*\.?\s+)?(?:\*\*)?([A-Za-z][A-Za-z /&-]{1,60}?)(?:\*\*)?\s*(?::\s*(.*))?$`,
)

// sectionKeys maps heading words to the record field they fill.
var sectionKeys = []struct {
	field string
	words []string
}{
	{field: domain.FieldPurpose, words: []string{"purpose", "objective", "aim"}},
	{field: domain.FieldScope, words: []string{"scope", "applicability"}},
}

// RegexFallback extracts purpose and scope by section heading and document
// codes with the sop_ids extractor when the model layer fails.
type RegexFallback struct {
	codes driven.ReferenceExtractor
}

// NewRegexFallback creates the mechanism. refs must provide sop_ids.
func NewRegexFallback(refs driven.ReferenceExtractorRegistry) (*RegexFallback, error) {
	codes, err := refs.Get(references.SOPIDs)
	if err != nil {
		return nil, fmt.Errorf("sop fallback: %w", err)
	}
	return &RegexFallback{codes: codes}, nil
}

// Name returns the mechanism name.
func (f *RegexFallback) Name() string {
	return "sop_regex"
}

// Extract returns the fields found in the document text.
func (f *RegexFallback) Extract(ctx context.Context, doc domain.DocumentContext) (map[string]any, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	out := make(map[string]any)
	sections := splitSections(doc.TextContent)
	for _, key := range sectionKeys {
		if body := findSection(sections, key.words); body != "" {
			out[key.field] = body
		}
	}

	own := strings.ToUpper(doc.InitialMetadata[domain.FieldName])
	codes := slices.DeleteFunc(f.codes.ExtractReferences(doc.TextContent), func(code string) bool {
		return code == own
	})
	if len(codes) > 0 {
		out[domain.FieldReferencedDocuments] = codes
	}

	if len(out) == 0 {
		return nil, false
	}
	logger.Debug("sop.fallback: %s found %d fields", doc.Filename, len(out))
	return out, true
}

type section struct {
	title string
	body  []string
}

// splitSections groups lines under the closest preceding heading. Only
// lines that look like headings start a new section: markdown headings,
// numbered headings, or short title-only lines ending in a colon.
func splitSections(text string) []section {
	var (
		out     []section
		current *section
	)
	for line := range strings.SplitSeq(text, "\n") {
		if title, inline, ok := parseHeading(line); ok {
			out = append(out, section{title: title})
			current = &out[len(out)-1]
			if inline != "" {
				current.body = append(current.body, inline)
			}
			continue
		}
		if current != nil {
			current.body = append(current.body, line)
		}
	}
	return out
}

func parseHeading(line string) (title, inline string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", "", false
	}
	isMarkdown := strings.HasPrefix(trimmed, "#")
	isNumbered := len(trimmed) > 0 && trimmed[0] >= '0' && trimmed[0] <= '9'
	hasColon := strings.Contains(trimmed, ":")
	if !isMarkdown && !isNumbered && !hasColon {
		return "", "", false
	}

	m := headingPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return "", "", false
	}
	title = strings.ToLower(strings.TrimSpace(m[1]))
	if len(strings.Fields(title)) > 4 {
		return "", "", false
	}
	return title, strings.TrimSpace(m[2]), true
}

func findSection(sections []section, words []string) string {
	for _, s := range sections {
		for _, w := range words {
			if s.title == w || strings.HasPrefix(s.title, w+" ") {
				return strings.TrimSpace(strings.Join(s.body, "\n"))
			}
		}
	}
	return ""
}
