package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmeta/internal/adapters/driving/watcher"
	"github.com/custodia-labs/docmeta/internal/core/domain"
)

var (
	watchRecursive bool
	watchInitial   bool
	watchDebounce  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Extract metadata from documents as they arrive",
	Long: `Watches a directory and extracts every supported document that is
created or modified in it. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&extractProfile, "profile", "p", "", "extraction profile (default from config)")
	watchCmd.Flags().StringVar(&extractFieldMap, "field-map", "", "YAML output profile overriding the output fields")
	watchCmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", false, "watch subdirectories")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "extract the documents already present")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a changed file is extracted")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	svc, err := extractorFromFlags()
	if err != nil {
		return err
	}

	w, err := watcher.New(svc, watcher.Config{
		Root:        args[0],
		Recursive:   watchRecursive,
		Extensions:  fileExtensions,
		Debounce:    watchDebounce,
		InitialScan: watchInitial,
	}, watcher.WithHandler(func(path string, result *domain.RunResult, err error) {
		if err != nil {
			var rfe *domain.RunFailedError
			if errors.As(err, &rfe) {
				err = rfe.Err
			}
			cmd.Printf("%s %s: %v\n", failStyle.Render("✗"), path, err)
			return
		}
		cmd.Printf("%s %s %s\n", okStyle.Render("✓"), path, mutedStyle.Render(fmt.Sprintf("(run %s, %s)", result.RunID, result.Source)))
	}))
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(cmd.Context())
}
