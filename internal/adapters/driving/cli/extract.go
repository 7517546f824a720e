package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmeta/internal/adapters/driven/profile"
	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driving"
)

var (
	extractProfile  string
	extractFieldMap string
	extractDocID    string
	extractJSON     bool

	batchWorkers   int
	batchRecursive bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [file...]",
	Short: "Extract metadata from documents",
	Long: `Runs the extraction pipeline on each file in turn and prints the
projected metadata.

The profile decides the filename parser, cleaning steps, model passes and
output fields. --field-map replaces the output fields with those of a YAML
output profile.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

var batchCmd = &cobra.Command{
	Use:   "batch [path...]",
	Short: "Extract metadata from many documents concurrently",
	Long: `Extracts every supported file under the given files and directories.
Documents are processed concurrently; a failing document does not stop the
others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	for _, c := range []*cobra.Command{extractCmd, batchCmd} {
		c.Flags().StringVarP(&extractProfile, "profile", "p", "", "extraction profile (default from config)")
		c.Flags().StringVar(&extractFieldMap, "field-map", "", "YAML output profile overriding the output fields")
		c.Flags().BoolVar(&extractJSON, "json", false, "output results as JSON")
	}
	extractCmd.Flags().StringVar(&extractDocID, "id", "", "document ID (single file only)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent documents (default number of CPUs)")
	batchCmd.Flags().BoolVarP(&batchRecursive, "recursive", "r", false, "descend into subdirectories")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(batchCmd)
}

// extractResult is the printable outcome of one document.
type extractResult struct {
	File       string         `json:"file"`
	RunID      string         `json:"run_id,omitempty"`
	DocumentID string         `json:"document_id,omitempty"`
	Source     string         `json:"source,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func newExtractResult(file string, result *domain.RunResult, err error) extractResult {
	r := extractResult{File: file}
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.RunID = result.RunID
	r.DocumentID = result.DocumentID
	r.Source = string(result.Source)
	r.Metadata = result.Output
	return r
}

func extractorFromFlags() (driving.ExtractionService, error) {
	opts := ExtractorOptions{Profile: extractProfile}
	if extractFieldMap != "" {
		p, err := profile.Load(extractFieldMap)
		if err != nil {
			return nil, fmt.Errorf("failed to load field map: %w", err)
		}
		opts.FieldMap = p.FieldMap
	}
	return extractor(opts)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractDocID != "" && len(args) > 1 {
		return errors.New("--id applies to a single file")
	}

	svc, err := extractorFromFlags()
	if err != nil {
		return err
	}

	results := make([]extractResult, 0, len(args))
	for _, path := range args {
		src := domain.RawSource{
			Filename:   filepath.Base(path),
			Path:       path,
			DocumentID: extractDocID,
		}
		result, err := svc.Extract(cmd.Context(), src)
		results = append(results, newExtractResult(path, result, err))
	}

	if err := outputResults(cmd, results); err != nil {
		return err
	}
	return failures(results)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if newBatch == nil {
		return errors.New("batch service not configured")
	}

	paths, err := collectFiles(args, batchRecursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		cmd.Println("No supported documents found.")
		return nil
	}

	svc, err := extractorFromFlags()
	if err != nil {
		return err
	}

	sources := make([]domain.RawSource, len(paths))
	for i, path := range paths {
		sources[i] = domain.RawSource{Filename: filepath.Base(path), Path: path}
	}

	items := newBatch(svc, batchWorkers).ExtractAll(cmd.Context(), sources)

	results := make([]extractResult, len(items))
	for i, item := range items {
		results[i] = newExtractResult(item.Source.Path, item.Result, item.Err)
	}

	if useJSON(cmd, extractJSON) {
		if err := printJSON(cmd, results); err != nil {
			return err
		}
		return failures(results)
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		status := okStyle.Render("ok")
		detail := r.RunID
		if r.Error != "" {
			status = failStyle.Render("failed")
			detail = truncate(r.Error, 60)
		}
		rows[i] = []string{r.File, status, r.Source, detail}
	}
	cmd.Println(renderTable([]string{"File", "Status", "Source", "Run / Error"}, rows))
	return failures(results)
}

func outputResults(cmd *cobra.Command, results []extractResult) error {
	if useJSON(cmd, extractJSON) {
		if len(results) == 1 {
			return printJSON(cmd, results[0])
		}
		return printJSON(cmd, results)
	}

	for _, r := range results {
		if r.Error != "" {
			cmd.Printf("%s %s\n", failStyle.Render("✗"), titleStyle.Render(r.File))
			cmd.Printf("  %s\n\n", r.Error)
			continue
		}
		cmd.Printf("%s %s\n", okStyle.Render("✓"), titleStyle.Render(r.File))
		cmd.Println(mutedStyle.Render(fmt.Sprintf("  run %s · %s", r.RunID, r.Source)))
		renderMetadata(cmd, r.Metadata)
		cmd.Println()
	}
	return nil
}

func failures(results []extractResult) error {
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d documents failed", failed, len(results))
}

// collectFiles expands directories into the supported files they contain.
// Files named explicitly are kept whatever their extension.
func collectFiles(args []string, recursive bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != arg && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if supported(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
	}
	return paths, nil
}

func supported(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	if len(fileExtensions) == 0 {
		return true
	}
	return slices.Contains(fileExtensions, strings.ToLower(filepath.Ext(path)))
}
