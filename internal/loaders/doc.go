// Package loaders provides implementations of the Loader interface for the
// document formats docmeta reads. Each loader turns a raw source into a
// Document with its text content and raw data.
//
// Loaders are registered with the Registry at startup and selected by name
// or by file extension.
package loaders
