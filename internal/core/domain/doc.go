// Package domain defines the core business entities for docmeta.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A loaded document awaiting extraction
//   - Record: The canonical metadata record with its extension map
//   - ExtractionConfig: Per-run settings, model routing and cleaning rules
//   - RunState / RunResult: The orchestrator's state machine and outcome
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
