package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used by the built-in passes.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptGenericSummary is the system prompt of the generic summary pass.
	// The template expects a %s placeholder for the document language.
	PromptGenericSummary = "generic_summary"

	// PromptSOPIdentity is the system prompt of the SOP identity pass.
	// The template expects a %s placeholder for the document language.
	PromptSOPIdentity = "sop_identity"

	// PromptSOPReferences is the system prompt of the SOP references pass.
	// This prompt has no format placeholders.
	PromptSOPReferences = "sop_references"
)

// PromptStoreAware is an optional interface for passes that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the pass uses its built-in prompt.
	SetPromptStore(store PromptStore)
}
