package cleaners

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/docmeta/internal/cleaners/htmlmd"
	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// Ensure steps implement the interface.
var (
	_ driven.Cleaner = (*PatternRemover)(nil)
	_ driven.Cleaner = (*MarkerReplacer)(nil)
	_ driven.Cleaner = (*ExcessBreakRemover)(nil)
	_ driven.Cleaner = (*MarkdownConverter)(nil)
	_ driven.Cleaner = (*UnicodeNormalizer)(nil)
)

// compiled caches regexes from configuration, keyed by their source.
// Invalid patterns are cached as nil so they are reported once.
var compiled sync.Map

func compile(pattern string) *regexp.Regexp {
	if v, ok := compiled.Load(pattern); ok {
		return v.(*regexp.Regexp)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.Warn("cleaner: invalid pattern %q skipped: %v", pattern, err)
		re = nil
	}
	v, _ := compiled.LoadOrStore(pattern, re)
	return v.(*regexp.Regexp)
}

// PatternRemover deletes every match of the configured patterns.
// The dot matches newlines so that multi-line fragments such as figures
// are removed whole.
type PatternRemover struct{}

// NewPatternRemover creates a pattern removal step.
func NewPatternRemover() *PatternRemover { return &PatternRemover{} }

// Name returns the step name.
func (c *PatternRemover) Name() string { return StepPatterns }

// Clean removes the configured patterns.
func (c *PatternRemover) Clean(text string, cfg *domain.CleaningConfig) string {
	for _, pattern := range cfg.PatternsToRemove {
		if re := compile("(?s)" + pattern); re != nil {
			text = re.ReplaceAllString(text, "")
		}
	}
	return text
}

// MarkerReplacer substitutes fixed marker tokens, e.g. selection marks
// emitted by layout analysis. Mappings apply in key order.
type MarkerReplacer struct{}

// NewMarkerReplacer creates a marker replacement step.
func NewMarkerReplacer() *MarkerReplacer { return &MarkerReplacer{} }

// Name returns the step name.
func (c *MarkerReplacer) Name() string { return StepMarkers }

// Clean replaces every configured marker.
func (c *MarkerReplacer) Clean(text string, cfg *domain.CleaningConfig) string {
	keys := make([]string, 0, len(cfg.SelectionMappings))
	for k := range cfg.SelectionMappings {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		text = strings.ReplaceAll(text, k, cfg.SelectionMappings[k])
	}
	return text
}

var excessBreaks = regexp.MustCompile(`(\n\s*){3,}`)

// ExcessBreakRemover collapses runs of three or more line breaks
// (with any whitespace between them) to a single blank line.
type ExcessBreakRemover struct{}

// NewExcessBreakRemover creates a line break collapsing step.
func NewExcessBreakRemover() *ExcessBreakRemover { return &ExcessBreakRemover{} }

// Name returns the step name.
func (c *ExcessBreakRemover) Name() string { return StepBreaks }

// Clean collapses excess line breaks.
func (c *ExcessBreakRemover) Clean(text string, _ *domain.CleaningConfig) string {
	return excessBreaks.ReplaceAllString(text, "\n\n")
}

// MarkdownConverter converts residual HTML markup to markdown.
// It is the terminal step of the built-in pipelines.
type MarkdownConverter struct{}

// NewMarkdownConverter creates a markdown conversion step.
func NewMarkdownConverter() *MarkdownConverter { return &MarkdownConverter{} }

// Name returns the step name.
func (c *MarkdownConverter) Name() string { return StepMarkdown }

// Clean converts markup. On failure the input is returned unchanged.
func (c *MarkdownConverter) Clean(text string, _ *domain.CleaningConfig) string {
	out, err := htmlmd.Convert(text)
	if err != nil {
		logger.Warn("cleaner.markdown: conversion failed, text kept: %v", err)
		return text
	}
	return out
}

// UnicodeNormalizer applies NFKC normalisation, folding compatibility
// characters such as non-breaking spaces and ligatures.
type UnicodeNormalizer struct{}

// NewUnicodeNormalizer creates a unicode normalisation step.
func NewUnicodeNormalizer() *UnicodeNormalizer { return &UnicodeNormalizer{} }

// Name returns the step name.
func (c *UnicodeNormalizer) Name() string { return StepUnicode }

// Clean normalises text to NFKC.
func (c *UnicodeNormalizer) Clean(text string, _ *domain.CleaningConfig) string {
	return norm.NFKC.String(text)
}
