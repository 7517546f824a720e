package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect the pass prompts",
	Long: `Each model pass reads its system prompt from a file in the prompts
directory. Edit the files to customise the prompts; delete a file to restore
the built-in default.`,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the prompts and their files",
	Args:  cobra.NoArgs,
	RunE:  runPromptsList,
}

var promptsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print the prompt used by a pass",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsShow,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the extraction profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if len(profileNames) == 0 {
			cmd.Println("No profiles registered.")
			return
		}
		for _, name := range profileNames {
			cmd.Println(name)
		}
	},
}

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(profilesCmd)
}

func runPromptsList(cmd *cobra.Command, _ []string) error {
	if promptCatalog == nil {
		return errors.New("prompt store not configured")
	}
	for _, name := range promptCatalog.Names() {
		cmd.Printf("%-20s %s\n", name, mutedStyle.Render(promptCatalog.Path(name)))
	}
	return nil
}

func runPromptsShow(cmd *cobra.Command, args []string) error {
	if promptCatalog == nil {
		return errors.New("prompt store not configured")
	}
	prompt, err := promptCatalog.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load prompt: %w", err)
	}
	cmd.Println(prompt)
	return nil
}
