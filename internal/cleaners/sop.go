package cleaners

import (
	"strings"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure SOP steps implement the interface.
var (
	_ driven.Cleaner = (*DocVersionRemover)(nil)
	_ driven.Cleaner = (*UncontrolledCopyRemover)(nil)
	_ driven.Cleaner = (*FrequentLineRemover)(nil)
)

// removeLines drops every line for which match returns true.
func removeLines(text string, match func(line string) bool) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !match(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// DocVersionRemover drops the repeated "Doc No." and "Version" header lines
// that controlled documents print on every page.
type DocVersionRemover struct{}

// NewDocVersionRemover creates the header line removal step.
func NewDocVersionRemover() *DocVersionRemover { return &DocVersionRemover{} }

// Name returns the step name.
func (c *DocVersionRemover) Name() string { return StepSOPDocVersion }

// Clean removes lines matching the document number or version regex.
func (c *DocVersionRemover) Clean(text string, cfg *domain.CleaningConfig) string {
	var patterns []string
	for _, p := range []string{cfg.DocNoRegex, cfg.VersionRegex} {
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		return text
	}
	return removeLines(text, func(line string) bool {
		for _, p := range patterns {
			if re := compile(p); re != nil && re.MatchString(line) {
				return true
			}
		}
		return false
	})
}

// UncontrolledCopyRemover drops the uncontrolled copy watermark lines.
type UncontrolledCopyRemover struct{}

// NewUncontrolledCopyRemover creates the watermark removal step.
func NewUncontrolledCopyRemover() *UncontrolledCopyRemover { return &UncontrolledCopyRemover{} }

// Name returns the step name.
func (c *UncontrolledCopyRemover) Name() string { return StepSOPUncontrolledCopy }

// Clean removes lines matching the watermark regex.
func (c *UncontrolledCopyRemover) Clean(text string, cfg *domain.CleaningConfig) string {
	if cfg.UncontrolledCopyRegex == "" {
		return text
	}
	re := compile(cfg.UncontrolledCopyRegex)
	if re == nil {
		return text
	}
	return removeLines(text, re.MatchString)
}

// FrequentLineRemover drops page headers and footers: lines longer than
// LengthThreshold that occur at least FrequencyThreshold times.
type FrequentLineRemover struct{}

// NewFrequentLineRemover creates the repeated line removal step.
func NewFrequentLineRemover() *FrequentLineRemover { return &FrequentLineRemover{} }

// Name returns the step name.
func (c *FrequentLineRemover) Name() string { return StepSOPFrequentLines }

// Clean removes frequent long lines. Lines are compared trimmed.
func (c *FrequentLineRemover) Clean(text string, cfg *domain.CleaningConfig) string {
	if cfg.FrequencyThreshold <= 0 {
		return text
	}

	counts := make(map[string]int)
	for _, line := range strings.Split(text, "\n") {
		if key := strings.TrimSpace(line); len(key) > cfg.LengthThreshold {
			counts[key]++
		}
	}

	frequent := make(map[string]bool)
	for line, n := range counts {
		if n >= cfg.FrequencyThreshold {
			frequent[line] = true
		}
	}
	if len(frequent) == 0 {
		return text
	}
	return removeLines(text, func(line string) bool {
		return frequent[strings.TrimSpace(line)]
	})
}
