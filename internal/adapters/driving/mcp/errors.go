// Package mcp provides an MCP (Model Context Protocol) server adapter for docmeta.
// It lets AI assistants extract document metadata and browse run history.
package mcp

import "errors"

// ErrMissingExtractionService is returned when the extraction service is not provided.
var ErrMissingExtractionService = errors.New("mcp: extraction service is required")
