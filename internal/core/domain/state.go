package domain

import "fmt"

// RunState is a state of the orchestrator's per-document state machine.
type RunState int

// Run states in pipeline order.
const (
	RunStateLoaded RunState = iota
	RunStateFilenameParsed
	RunStateCleaned
	RunStateChunked
	RunStateExtracting
	RunStateExtracted
	RunStateFallbackExtracting
	RunStatePostProcessed
	RunStateMapped
	RunStateFailed
)

var runStateNames = [...]string{
	RunStateLoaded:             "loaded",
	RunStateFilenameParsed:     "filename_parsed",
	RunStateCleaned:            "cleaned",
	RunStateChunked:            "chunked",
	RunStateExtracting:         "extracting",
	RunStateExtracted:          "extracted",
	RunStateFallbackExtracting: "fallback_extracting",
	RunStatePostProcessed:      "post_processed",
	RunStateMapped:             "mapped",
	RunStateFailed:             "failed",
}

// String returns the state name.
func (s RunState) String() string {
	if s < 0 || int(s) >= len(runStateNames) {
		return "unknown"
	}
	return runStateNames[s]
}

// IsTerminal reports whether no transition leaves the state.
func (s RunState) IsTerminal() bool {
	return s == RunStateMapped || s == RunStateFailed
}

// ParseRunState returns the state with the given name.
func ParseRunState(name string) (RunState, bool) {
	for i, n := range runStateNames {
		if n == name {
			return RunState(i), true
		}
	}
	return 0, false
}

// MarshalText encodes the state by name.
func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *RunState) UnmarshalText(text []byte) error {
	v, ok := ParseRunState(string(text))
	if !ok {
		return fmt.Errorf("%w: run state %q", ErrInvalidInput, text)
	}
	*s = v
	return nil
}

// OutcomeSource tags which route produced extracted metadata.
type OutcomeSource string

// Outcome sources.
const (
	// SourcePrimary means every pass was answered by the primary model.
	SourcePrimary OutcomeSource = "primary"

	// SourceFallback means at least one pass needed the fallback model.
	SourceFallback OutcomeSource = "fallback"

	// SourceMechanism means the model layer failed and the deterministic
	// fallback mechanism supplied the metadata.
	SourceMechanism OutcomeSource = "mechanism"
)

// String returns the source name.
func (s OutcomeSource) String() string {
	return string(s)
}
