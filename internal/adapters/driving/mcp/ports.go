package mcp

import (
	"github.com/custodia-labs/docmeta/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Extraction runs the metadata pipeline on one document.
	Extraction driving.ExtractionService

	// Runs queries the run history. Optional.
	Runs driving.RunService

	// Profiles lists the available extraction profiles. Optional.
	Profiles []string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Extraction == nil {
		return ErrMissingExtractionService
	}
	return nil
}
