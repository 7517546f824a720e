// Package references finds and normalises document references (document
// codes, URLs, file names) inside text fields.
//
// Extractors are registered by name and resolved when a profile is
// configured. An unknown name is recoverable: callers log a warning and skip
// reference extraction.
package references
