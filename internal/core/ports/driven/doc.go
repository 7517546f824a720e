// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to run:
//
//   - Loader: Turns a raw source into a Document
//   - FilenameParser: Derives initial metadata from the filename
//   - Cleaner: One text cleaning step
//   - Chunker: Bounds the text sent to the model
//   - ModelClient: Sends chat messages to a model provider
//   - LLMPass: One prompt/schema unit of the multi-pass extraction
//   - RecordProcessor: Finalises the merged record
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FallbackMechanism: Deterministic extraction when the model layer fails.
//     Without it, a failed model layer fails the run.
//   - ReferenceExtractorRegistry: Without it, reference fields are kept as returned.
//   - RunStore: Run history. Without it, runs are not recorded.
//   - PromptStore: Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, plugin or service package
package driven
