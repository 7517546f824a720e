package domain

import "time"

// RunResult is the outcome of one successful pipeline run.
type RunResult struct {
	// RunID identifies the run in the run store.
	RunID string

	// DocumentID is the ID of the processed document.
	DocumentID string

	// Filename is the original filename.
	Filename string

	// Output is the projected record keyed by output field names.
	Output map[string]any

	// Record is the post-processed canonical record before projection.
	Record *Record

	// Source tells which route produced the metadata.
	Source OutcomeSource

	// States lists every state the run passed through, in order.
	States []RunState
}

// FinalState returns the last state reached.
func (r *RunResult) FinalState() RunState {
	if len(r.States) == 0 {
		return RunStateLoaded
	}
	return r.States[len(r.States)-1]
}

// RunRecord is the persisted history entry of a run, successful or not.
type RunRecord struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Filename   string         `json:"filename"`
	Profile    string         `json:"profile"`
	State      RunState       `json:"state"`
	Source     OutcomeSource  `json:"source,omitempty"`
	Output     map[string]any `json:"output,omitempty"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Succeeded reports whether the run produced metadata.
func (r *RunRecord) Succeeded() bool {
	return r.State == RunStateMapped && r.Error == ""
}

// Duration returns how long the run took.
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunFilter narrows run history queries.
type RunFilter struct {
	// Filename matches runs of one file when set.
	Filename string

	// FailedOnly restricts the result to failed runs.
	FailedOnly bool

	// Limit caps the number of runs returned, newest first. Zero means no limit.
	Limit int
}

// FinalizeContext carries what record processors need besides the record.
type FinalizeContext struct {
	// Document is the snapshot of the processed document.
	Document DocumentContext

	// FilenameFields are the values parsed from the filename. They are
	// authoritative over model output for canonical keys.
	FilenameFields map[string]string

	// ReferenceExtractor names the extractor applied to reference fields.
	ReferenceExtractor string
}
