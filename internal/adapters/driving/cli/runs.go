package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

var (
	runsFilename string
	runsFailed   bool
	runsLimit    int
	runsJSON     bool

	exportFormat  string
	exportColumns []string
	exportOutput  string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect extraction runs",
	Long:  `List, show and delete recorded extraction runs.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a run and its metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run metadata",
	Long: `Writes the metadata of recorded runs to a spreadsheet or JSON file.

Columns default to every output field seen in the exported runs.
Use -o - to write to standard output.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	for _, c := range []*cobra.Command{runsListCmd, exportCmd} {
		c.Flags().StringVar(&runsFilename, "filename", "", "only runs of this filename")
		c.Flags().BoolVar(&runsFailed, "failed", false, "only failed runs")
	}
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs")
	runsListCmd.Flags().BoolVar(&runsJSON, "json", false, "output runs as JSON")
	runsShowCmd.Flags().BoolVar(&runsJSON, "json", false, "output the run as JSON")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "export format")
	exportCmd.Flags().StringSliceVarP(&exportColumns, "columns", "c", nil, "output fields to export (default all)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default runs.<format>)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(exportCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}

	runs, err := runService.List(cmd.Context(), domain.RunFilter{
		Filename:   runsFilename,
		FailedOnly: runsFailed,
		Limit:      runsLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if useJSON(cmd, runsJSON) {
		return printJSON(cmd, runs)
	}

	if len(runs) == 0 {
		cmd.Println("No runs found.")
		return nil
	}

	rows := make([][]string, len(runs))
	for i := range runs {
		r := &runs[i]
		rows[i] = []string{
			r.ID,
			truncate(r.Filename, 40),
			r.Profile,
			stateLabel(r.State),
			string(r.Source),
			formatTimestamp(r.StartedAt),
			r.Duration().Round(time.Millisecond).String(),
		}
	}
	cmd.Println(renderTable([]string{"Run", "File", "Profile", "State", "Source", "Started", "Took"}, rows))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}

	run, err := runService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if useJSON(cmd, runsJSON) {
		return printJSON(cmd, run)
	}

	cmd.Println(titleStyle.Render(run.Filename))
	cmd.Printf("  Run:      %s\n", run.ID)
	cmd.Printf("  Document: %s\n", run.DocumentID)
	cmd.Printf("  Profile:  %s\n", run.Profile)
	cmd.Printf("  State:    %s\n", stateLabel(run.State))
	if run.Source != "" {
		cmd.Printf("  Source:   %s\n", run.Source)
	}
	cmd.Printf("  Started:  %s (%s)\n", formatTimestamp(run.StartedAt), run.Duration().Round(time.Millisecond))
	if run.Error != "" {
		cmd.Printf("  Error:    %s\n", failStyle.Render(run.Error))
	}
	if len(run.Output) > 0 {
		cmd.Println()
		renderMetadata(cmd, run.Output)
	}
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}
	if err := runService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	cmd.Printf("Deleted run %s\n", args[0])
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}

	format := strings.ToLower(exportFormat)
	data, err := runService.Export(cmd.Context(), domain.RunFilter{
		Filename:   runsFilename,
		FailedOnly: runsFailed,
	}, format, exportColumns)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) && len(exportFormats) > 0 {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(exportFormats, ", "))
		}
		return fmt.Errorf("failed to export runs: %w", err)
	}

	if exportOutput == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	path := exportOutput
	if path == "" {
		path = "runs." + format
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cmd.Printf("Exported runs to %s\n", path)
	return nil
}
