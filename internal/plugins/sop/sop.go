// Package sop provides the extraction profile for Standard Operating
// Procedures: controlled documents named <CODE>_<version>_<status>_<lang>
// that cite each other by document code.
package sop

import (
	"github.com/custodia-labs/docmeta/internal/cleaners"
	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/jsonrepair"
	"github.com/custodia-labs/docmeta/internal/plugins"
	"github.com/custodia-labs/docmeta/internal/references"
)

// Name is the profile name.
const Name = "sop"

// DocumentType is the document type reported for SOP filenames.
const DocumentType = "sop"

// Pass names.
const (
	PassIdentity   = "sop_identity"
	PassReferences = "sop_references"
)

// DefaultIdentityPrompt is the built-in system prompt of the identity pass.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultIdentityPrompt = `You are an expert in quality management documentation and extract metadata from Standard Operating Procedures.
The document is in %s. Read the document and return a single JSON object with these keys:
- "title": the document title
- "purpose": the purpose or objective section, summarised in at most three sentences
- "scope": what the procedure applies to, summarised in at most three sentences
- "target_audience": the roles or departments the procedure is written for
- "abbreviations": abbreviations defined in the document as "ABBR: meaning" separated by semicolons
Use null for any value that the document does not contain. Do not invent values.`

// DefaultReferencesPrompt is the built-in system prompt of the references pass.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultReferencesPrompt = `You are an expert in quality management documentation. You receive the metadata extracted so far and the document text of a Standard Operating Procedure.
Return a single JSON object with these keys, each a list of strings:
- "governing_quality_module_or_global_standard": quality modules or global standards that govern this procedure
- "governing_documents": document codes of the documents that govern this procedure
- "related_documents": document codes of related procedures, forms and templates
- "referenced_documents": document codes of every other document cited in the text
- "external_references": regulations, norms and URLs outside the document system
Document codes look like QMS-0001234. Use an empty list when nothing applies.`

// CleaningSteps is the cleaning order of the profile.
var CleaningSteps = []string{
	cleaners.StepPatterns,
	cleaners.StepMarkers,
	cleaners.StepSOPDocVersion,
	cleaners.StepSOPUncontrolledCopy,
	cleaners.StepSOPFrequentLines,
	cleaners.StepBreaks,
	cleaners.StepMarkdown,
}

// FieldMap is the default output projection.
var FieldMap = domain.IdentityFieldMap(
	domain.FieldName,
	domain.FieldVersion,
	domain.FieldStatus,
	domain.FieldLanguage,
	domain.FieldPurpose,
	domain.FieldScope,
	domain.FieldTargetAudience,
	domain.FieldAbbreviations,
	domain.FieldGoverningStandards,
	domain.FieldGoverningDocuments,
	domain.FieldRelatedDocuments,
	domain.FieldReferencedDocuments,
	domain.FieldExternalReferences,
)

// Injected is the static metadata stamped onto SOP records.
var Injected = domain.InjectedMetadata{
	Total: map[string]string{domain.FieldGlobalDocInd: "Yes"},
	Fixed: map[string]string{
		domain.FieldTitle:           "SOP Document Title",
		domain.FieldQualitySystem:   "QMS",
		domain.FieldProcess:         "Document Control",
		domain.FieldScopes:          "Internal",
		domain.FieldEntities:        "All Departments",
		domain.FieldOwnerDepartment: "QA",
	},
}

// IdentitySchema returns the response schema of the identity pass.
func IdentitySchema() map[string]any {
	return jsonrepair.Object(map[string]any{
		domain.FieldTitle:          jsonrepair.StringOrNull(),
		domain.FieldPurpose:        jsonrepair.StringOrNull(),
		domain.FieldScope:          jsonrepair.StringOrNull(),
		domain.FieldTargetAudience: jsonrepair.StringOrNull(),
		domain.FieldAbbreviations:  jsonrepair.StringOrNull(),
	})
}

// ReferencesSchema returns the response schema of the references pass.
func ReferencesSchema() map[string]any {
	props := make(map[string]any)
	for _, f := range domain.ReferenceFields() {
		props[f] = jsonrepair.StringList()
	}
	return jsonrepair.Object(props)
}

// NewIdentityPass creates the identity pass.
func NewIdentityPass(prompts driven.PromptStore) *plugins.PromptPass {
	return plugins.NewPromptPass(PassIdentity, IdentitySchema(), driven.PromptSOPIdentity, DefaultIdentityPrompt,
		plugins.WithLanguage(),
		plugins.WithPromptStore(prompts),
	)
}

// NewReferencesPass creates the references pass. It sees the identity
// output and the document text bounded by chunker.
func NewReferencesPass(prompts driven.PromptStore, chunker driven.Chunker) *plugins.ReferencePass {
	pass := plugins.NewPromptPass(PassReferences, ReferencesSchema(), driven.PromptSOPReferences, DefaultReferencesPrompt,
		plugins.WithDocumentText(chunker),
		plugins.WithPromptStore(prompts),
	)
	return plugins.NewReferencePass(pass, references.SOPIDs, domain.ReferenceFields()...)
}

// New builds the SOP profile.
func New(deps plugins.Deps) (*plugins.Profile, error) {
	refs := deps.References
	if refs == nil {
		refs = references.Default
	}
	fallback, err := NewRegexFallback(refs)
	if err != nil {
		return nil, err
	}

	return &plugins.Profile{
		Name:          Name,
		Parser:        NewFilenameParser(),
		CleaningSteps: CleaningSteps,
		Passes: []driven.LLMPass{
			NewIdentityPass(deps.Prompts),
			NewReferencesPass(deps.Prompts, deps.Chunker),
		},
		ReferenceExtractor: references.SOPIDs,
		Fallback:           fallback,
		FieldMap:           FieldMap,
		Injected:           Injected,
	}, nil
}
