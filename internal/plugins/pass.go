package plugins

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure PromptPass implements the interfaces.
var (
	_ driven.LLMPass          = (*PromptPass)(nil)
	_ driven.PromptStoreAware = (*PromptPass)(nil)
)

// PromptPass is an LLM pass whose system prompt is a template loaded from
// the prompt store, falling back to a built-in default.
type PromptPass struct {
	name          string
	schema        map[string]any
	promptName    string
	defaultPrompt string
	language      bool
	withDocument  bool
	chunker       driven.Chunker
	promptStore   driven.PromptStore
}

// PassOption configures a PromptPass.
type PassOption func(*PromptPass)

// WithLanguage formats the document language into the %s placeholder of
// the prompt template.
func WithLanguage() PassOption {
	return func(p *PromptPass) {
		p.language = true
	}
}

// WithDocumentText appends the document text to the user message, bounded
// by chunker when one is given. Used by passes that receive the previous
// pass output as their input.
func WithDocumentText(chunker driven.Chunker) PassOption {
	return func(p *PromptPass) {
		p.withDocument = true
		p.chunker = chunker
	}
}

// WithPromptStore sets the prompt store.
func WithPromptStore(store driven.PromptStore) PassOption {
	return func(p *PromptPass) {
		p.promptStore = store
	}
}

// NewPromptPass creates a pass.
func NewPromptPass(name string, schema map[string]any, promptName, defaultPrompt string, opts ...PassOption) *PromptPass {
	p := &PromptPass{
		name:          name,
		schema:        schema,
		promptName:    promptName,
		defaultPrompt: defaultPrompt,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the pass name.
func (p *PromptPass) Name() string {
	return p.name
}

// Schema returns the response schema.
func (p *PromptPass) Schema() map[string]any {
	return p.schema
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (p *PromptPass) SetPromptStore(store driven.PromptStore) {
	p.promptStore = store
}

// Messages builds the system and user messages.
func (p *PromptPass) Messages(input string, doc domain.DocumentContext) ([]driven.ChatMessage, error) {
	system := p.loadPrompt()
	if p.language {
		lang := doc.Language
		if lang == "" {
			lang = domain.DefaultLanguage
		}
		if !strings.Contains(system, "%s") {
			return nil, fmt.Errorf("prompt %q: missing %%s placeholder for language", p.promptName)
		}
		system = fmt.Sprintf(system, lang)
	}

	user := input
	if p.withDocument && doc.TextContent != "" {
		text := doc.TextContent
		if p.chunker != nil {
			if chunks := p.chunker.Chunk(text); len(chunks) > 0 {
				text = chunks[0]
			}
		}
		user = "Metadata extracted so far:\n" + input + "\n\nDocument:\n" + text
	}

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: user},
	}, nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (p *PromptPass) loadPrompt() string {
	if p.promptStore == nil {
		return p.defaultPrompt
	}
	prompt, err := p.promptStore.Load(p.promptName)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return p.defaultPrompt
	}
	return prompt
}

// Ensure ReferencePass implements the interface.
var _ driven.ReferenceFieldsPass = (*ReferencePass)(nil)

// ReferencePass is a PromptPass whose list fields carry document
// references normalised by a named extractor.
type ReferencePass struct {
	*PromptPass
	extractor string
	fields    []string
}

// NewReferencePass wraps pass with reference field declarations.
func NewReferencePass(pass *PromptPass, extractor string, fields ...string) *ReferencePass {
	return &ReferencePass{
		PromptPass: pass,
		extractor:  extractor,
		fields:     fields,
	}
}

// ReferenceFields returns the extractor name and the fields it applies to.
func (p *ReferencePass) ReferenceFields() (string, []string) {
	return p.extractor, p.fields
}
