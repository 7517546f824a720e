// Package generic provides the extraction profile for documents without a
// naming convention: a single summary pass and URL/file references.
package generic

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/docmeta/internal/cleaners"
	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/jsonrepair"
	"github.com/custodia-labs/docmeta/internal/plugins"
	"github.com/custodia-labs/docmeta/internal/references"
)

// Name is the profile name.
const Name = "generic"

// Fields produced by the summary pass.
const (
	FieldSummary  = "summary"
	FieldKeywords = "keywords"
)

// PassName names the summary pass in logs and errors.
const PassName = "generic_summary"

// DefaultPrompt is the built-in system prompt of the summary pass.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultPrompt = `You are an expert at extracting general metadata from various types of documents.
Your task is to identify and extract key metadata fields from the provided document content.
Focus on providing a concise summary and relevant keywords.
The document is in %s. Respond with a single JSON object with the keys "summary" (string or null) and "keywords" (list of strings).`

// CleaningSteps is the cleaning order of the profile.
var CleaningSteps = []string{
	cleaners.StepBreaks,
	cleaners.StepPatterns,
	cleaners.StepMarkers,
	cleaners.StepMarkdown,
}

// FieldMap is the default output projection.
var FieldMap = domain.IdentityFieldMap(
	domain.FieldName,
	domain.FieldVersion,
	domain.FieldStatus,
	domain.FieldDocumentType,
	domain.FieldLanguage,
	FieldSummary,
	FieldKeywords,
)

// Injected is the static metadata stamped onto generic records.
var Injected = domain.InjectedMetadata{
	Total: map[string]string{domain.FieldGlobalDocInd: "No"},
	Fixed: map[string]string{
		domain.FieldTitle:           "Generic Document",
		domain.FieldQualitySystem:   "",
		domain.FieldProcess:         "",
		domain.FieldScopes:          "",
		domain.FieldEntities:        "",
		domain.FieldOwnerDepartment: "",
	},
}

// Schema returns the response schema of the summary pass.
func Schema() map[string]any {
	return jsonrepair.Object(map[string]any{
		FieldSummary:  jsonrepair.StringOrNull(),
		FieldKeywords: jsonrepair.StringList(),
	})
}

// NewPass creates the summary pass.
func NewPass(prompts driven.PromptStore) *plugins.PromptPass {
	return plugins.NewPromptPass(PassName, Schema(), driven.PromptGenericSummary, DefaultPrompt,
		plugins.WithLanguage(),
		plugins.WithPromptStore(prompts),
	)
}

// New builds the generic profile.
func New(deps plugins.Deps) (*plugins.Profile, error) {
	return &plugins.Profile{
		Name:               Name,
		Parser:             NewFilenameParser(),
		CleaningSteps:      CleaningSteps,
		Passes:             []driven.LLMPass{NewPass(deps.Prompts)},
		ReferenceExtractor: references.GenericRefs,
		FieldMap:           FieldMap,
		Injected:           Injected,
	}, nil
}

// Ensure FilenameParser implements the interface.
var _ driven.FilenameParser = (*FilenameParser)(nil)

var (
	versionPattern      = regexp.MustCompile(`[vV]?(\d+\.\d+(?:\.\d+)*)`)
	versionStripPattern = regexp.MustCompile(`[_\-.]*[vV]?\d+\.\d+(?:\.\d+)*`)
)

// FilenameParser extracts a name and an optional dotted version from any
// filename, e.g. "handbook_v1.2.json" gives name "handbook", version "1.2".
type FilenameParser struct{}

// NewFilenameParser creates a parser.
func NewFilenameParser() *FilenameParser {
	return &FilenameParser{}
}

// Parse returns name, version and the generic defaults.
func (p *FilenameParser) Parse(filename string) map[string]string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	name := base
	version := ""

	if m := versionPattern.FindStringSubmatch(base); m != nil {
		version = m[1]
		loc := versionStripPattern.FindStringIndex(base)
		name = strings.Trim(base[:loc[0]]+base[loc[1]:], "_.-")
		if name == "" {
			name = base
		}
	}
	if name == "" {
		name = "unknown"
	}

	return map[string]string{
		domain.FieldName:         name,
		domain.FieldVersion:      version,
		domain.FieldStatus:       "unknown",
		domain.FieldGlobalDocInd: "No",
		domain.FieldDocumentType: "generic",
		domain.FieldLanguage:     domain.DefaultLanguage,
	}
}
