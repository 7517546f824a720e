// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under the docmeta
// home directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable pass prompt templates
package file
