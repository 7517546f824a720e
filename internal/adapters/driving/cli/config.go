package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmeta/internal/adapters/driven/ai"
	"github.com/custodia-labs/docmeta/internal/core/domain"
)

var configJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the extraction configuration.

Values come from the built-in defaults, then the config file, then the
environment (SLM_EXTRACTION_ATTEMPTS, ENABLE_LLM, DEFAULT_LANGUAGE,
DOCMETA_PROVIDER).`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a stored configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a configuration value",
	Long: `Store a configuration value in the config file.

Keys are dotted, e.g. extraction.attempts or models.primary.provider.
List values are comma separated.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a stored configuration value",
	Long: `Remove a value from the config file so its default applies again.

A table key such as models.fallback or cleaning.selection_mappings
removes every value below it.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

var configCheckCmd = &cobra.Command{
	Use:   "check [language]",
	Short: "Check the model configuration",
	Long: `Resolves the primary model, and the fallback model when enabled, for a
document language and reports anything missing. No model is called.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

func init() {
	configCmd.PersistentFlags().BoolVar(&configJSON, "json", false, "output as JSON")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := settingsService.Extraction()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if configJSON {
		cfg.Primary.APIKey = maskAPIKey(cfg.Primary.APIKey)
		cfg.Fallback.APIKey = maskAPIKey(cfg.Fallback.APIKey)
		return printJSON(cmd, cfg)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Extraction]")
	cmd.Printf("  Profile: %s\n", cfg.Profile)
	cmd.Printf("  Attempts: %d\n", cfg.Attempts)
	cmd.Printf("  Fallback enabled: %t\n", cfg.EnableFallback)
	cmd.Printf("  Default language: %s\n", cfg.DefaultLanguage)
	cmd.Printf("  Temperature: %g\n", cfg.Temperature)
	cmd.Printf("  Max tokens: %d\n", cfg.MaxTokens)
	cmd.Printf("  Pass timeout: %s\n", cfg.PassTimeout)
	if len(cfg.CleaningSteps) > 0 {
		cmd.Printf("  Cleaning steps: %s\n", strings.Join(cfg.CleaningSteps, ", "))
	}
	cmd.Println()

	printModel(cmd, "Primary model", cfg.Primary)
	printModel(cmd, "Fallback model", cfg.Fallback)

	cmd.Println("[Chunking]")
	cmd.Printf("  Max length: %d\n", cfg.Chunking.MaxLength)
	cmd.Printf("  Head length: %d\n", cfg.Chunking.HeadLength)
	cmd.Println()

	if len(cfg.FieldMap) > 0 {
		cmd.Println("[Field map]")
		for _, f := range cfg.FieldMap {
			cmd.Printf("  %s -> %s\n", f.Canonical, f.Output)
		}
		cmd.Println()
	}
	return nil
}

func printModel(cmd *cobra.Command, title string, m domain.ModelSettings) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Provider: %s\n", m.Provider)
	cmd.Printf("  Model: %s\n", valueOrEnv(m.Model, m.ModelEnv))
	cmd.Printf("  API version: %s\n", valueOrEnv(m.APIVersion, m.APIVersionEnv))
	cmd.Printf("  Endpoint: %s\n", valueOrEnv(m.Endpoint, m.EndpointEnv))
	switch {
	case m.APIKey != "":
		cmd.Printf("  API Key: %s\n", maskAPIKey(m.APIKey))
	case m.APIKeyEnv != "":
		cmd.Printf("  API Key: $%s\n", m.APIKeyEnv)
	default:
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Println()
}

func valueOrEnv(value, env string) string {
	if value != "" {
		return value
	}
	if env != "" {
		return "$" + env
	}
	return "(not set)"
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	v, ok := settingsService.Get(args[0])
	if !ok {
		return fmt.Errorf("%s: %w", args[0], domain.ErrNotFound)
	}
	if configJSON {
		return printJSON(cmd, v)
	}
	switch list := v.(type) {
	case []string:
		cmd.Println(strings.Join(list, ","))
	case []any:
		parts := make([]string, len(list))
		for i, e := range list {
			parts[i] = fmt.Sprint(e)
		}
		cmd.Println(strings.Join(parts, ","))
	default:
		cmd.Println(v)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Unset(args[0]); err != nil {
		return fmt.Errorf("failed to unset %s: %w", args[0], err)
	}
	cmd.Printf("%s unset\n", args[0])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := settingsService.Extraction()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	language := cfg.DefaultLanguage
	if len(args) == 1 {
		language = args[0]
	}

	problems := ai.ValidateConfig(cfg, language, envLookup)
	roles := []string{"primary"}
	if cfg.EnableFallback {
		roles = append(roles, "fallback")
	}
	for _, role := range roles {
		cmd.Printf("Checking %s model (%s)... ", role, language)
		failed := false
		for _, p := range problems {
			if p.Role == role {
				cmd.Printf("FAILED: %v\n", p.Err)
				failed = true
			}
		}
		if !failed {
			cmd.Println("OK")
		}
	}

	if err := ai.JoinProblems(problems); err != nil {
		return fmt.Errorf("model configuration is incomplete: %w", err)
	}
	return nil
}

func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
