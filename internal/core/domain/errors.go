package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown loader, profile or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the model client is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Pipeline Errors.

	// ErrLoad indicates the document could not be read into canonical shape.
	// Fatal for the run and never retried.
	ErrLoad = errors.New("load failed")

	// ErrConfiguration indicates missing or incomplete model routing.
	// Fatal for one pass/model target, not for the document.
	ErrConfiguration = errors.New("configuration error")

	// ErrParse indicates model output could not be repaired into a valid record.
	// Recoverable by retrying the pass.
	ErrParse = errors.New("parse error")

	// ErrExtractionFailed indicates every pass recovery option was exhausted.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrRunFailed indicates a run produced no metadata.
	ErrRunFailed = errors.New("run failed")
)

// LoadError is returned by loaders when a source cannot become a Document.
type LoadError struct {
	Filename string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Filename, ErrLoad)
	}
	return fmt.Sprintf("load %s: %v", e.Filename, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// ConfigurationError signals a model target missing routing information.
type ConfigurationError struct {
	// Pass is the pass being configured, empty when not pass specific.
	Pass string

	// Field names the missing setting (e.g. "model", "endpoint").
	Field string
}

func (e *ConfigurationError) Error() string {
	if e.Pass == "" {
		return fmt.Sprintf("%s: %s is not set", ErrConfiguration, e.Field)
	}
	return fmt.Sprintf("%s: pass %q: %s is not set", ErrConfiguration, e.Pass, e.Field)
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ParseError carries the offending model text and the failure detail.
type ParseError struct {
	Text   string
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrParse, e.Detail)
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ExtractionFailedError reports the pass that exhausted its recovery options.
type ExtractionFailedError struct {
	Pass             string
	PrimaryAttempts  int
	FallbackAttempts int
	Err              error
}

func (e *ExtractionFailedError) Error() string {
	return fmt.Sprintf("%s: pass %q after %d primary and %d fallback attempts: %v",
		ErrExtractionFailed, e.Pass, e.PrimaryAttempts, e.FallbackAttempts, e.Err)
}

func (e *ExtractionFailedError) Unwrap() error { return e.Err }

// Is matches ErrExtractionFailed.
func (e *ExtractionFailedError) Is(target error) bool { return target == ErrExtractionFailed }

// RunFailedError is the terminal error of a pipeline run.
// No metadata was produced; Err holds the originating cause.
type RunFailedError struct {
	DocumentID string
	Filename   string
	State      RunState
	Err        error
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("%s: %s in state %s: %v", ErrRunFailed, e.Filename, e.State, e.Err)
}

func (e *RunFailedError) Unwrap() error { return e.Err }

// Is matches ErrRunFailed.
func (e *RunFailedError) Is(target error) bool { return target == ErrRunFailed }
