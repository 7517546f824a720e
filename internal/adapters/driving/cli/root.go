// Package cli implements the docmeta command line interface.
//
// Commands read their collaborators from package-level services set by the
// composition root through SetServices before Execute is called.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/core/ports/driving"
	"github.com/custodia-labs/docmeta/internal/logger"
)

var version = "dev"

var verbose bool

// ExtractorOptions selects the profile and projection of an extractor.
type ExtractorOptions struct {
	// Profile names the extraction profile. Empty uses the configured one.
	Profile string

	// FieldMap overrides the output projection when set.
	FieldMap domain.FieldMap
}

// ExtractorFactory builds an extraction service.
type ExtractorFactory func(opts ExtractorOptions) (driving.ExtractionService, error)

// BatchFactory wraps an extractor for concurrent use.
type BatchFactory func(extractor driving.ExtractionService, workers int) driving.BatchService

// PromptCatalog is a prompt store that can list its prompts.
type PromptCatalog interface {
	driven.PromptStore
	Names() []string
	Path(name string) string
}

// Services holds the collaborators of the commands.
type Services struct {
	NewExtractor ExtractorFactory
	NewBatch     BatchFactory
	Runs         driving.RunService
	Settings     driving.SettingsService
	Prompts      PromptCatalog

	// Profiles lists the registered profile names.
	Profiles []string

	// Extensions lists the file extensions the loaders accept.
	Extensions []string

	// Formats lists the export formats.
	Formats []string

	// Lookup resolves model routing variables for config check.
	Lookup domain.LookupFunc
}

var (
	newExtractor    ExtractorFactory
	newBatch        BatchFactory
	runService      driving.RunService
	settingsService driving.SettingsService
	promptCatalog   PromptCatalog
	profileNames    []string
	fileExtensions  []string
	exportFormats   []string
	envLookup       domain.LookupFunc
)

// SetServices injects the command collaborators.
func SetServices(s Services) {
	newExtractor = s.NewExtractor
	newBatch = s.NewBatch
	runService = s.Runs
	settingsService = s.Settings
	promptCatalog = s.Prompts
	profileNames = s.Profiles
	fileExtensions = s.Extensions
	exportFormats = s.Formats
	envLookup = s.Lookup
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "docmeta",
	Short: "Extract structured metadata from documents",
	Long: `docmeta extracts structured metadata from documents with language models.

Documents are cleaned, sent through the passes of an extraction profile,
post-processed and projected onto the output fields of the profile. Every
run is recorded and can be listed or exported.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
}

// Execute runs the root command. Command output goes to stdout.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func extractor(opts ExtractorOptions) (driving.ExtractionService, error) {
	if newExtractor == nil {
		return nil, errors.New("extraction service not configured")
	}
	return newExtractor(opts)
}
