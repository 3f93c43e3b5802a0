package main

import (
	"errors"
	"fmt"
	"os"

	"bskyscraper/pkg/auth"
	"bskyscraper/pkg/config"
	"bskyscraper/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage bskyscraper configuration.

Configuration is merged from (highest priority first):
  - Command line flags
  - Environment variables (BLUESKY_*, BSKYSCRAPER_*) and .env files
  - Configuration file
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with every available option.

The file is written to '.bskyscraper.yaml' in the current directory unless a
different path is given with --config.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration after merging all sources. The app password is masked.`,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# bskyscraper configuration
#
# Environment variables override these values, for example
# BLUESKY_HANDLE, BLUESKY_APP_PASSWORD, BSKYSCRAPER_OUTPUT_DIR.

bluesky:
  # Prefer 'bskyscraper auth login' over storing the app password here
  handle: ""
  app_password: ""
  base_url: "https://bsky.social"
  timeout: 10s

search:
  # top or latest
  sort: ""
  lang: ""
  # Posts per page, 1-100
  limit: 25
  # 0 follows the cursor until the results run out
  max_pages: 0

output:
  directory: "Scraped Posts"
  # replace: overwrite <query>.csv; merge: union with it, deduplicated by post link
  strategy: "replace"
  notify: false

validation:
  # Drop posts whose link shows the "no content" page
  enabled: false
  # Empty uses the built-in bsky.app no-content page
  template_path: ""
  timeout: 10s
  # 0 disables pacing
  requests_per_minute: 0

logging:
  # debug, info, warn, error
  level: "info"
  # console or json
  format: "console"
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".bskyscraper.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		ui.PrintError("Configuration file already exists", path)
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
		ui.PrintError("Failed to write configuration file", err.Error())
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Configuration file created: %s", path))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	masked := *cfg
	if masked.Bluesky.AppPassword != "" {
		masked.Bluesky.AppPassword = auth.MaskSecret(masked.Bluesky.AppPassword)
	}

	data, err := yaml.Marshal(&masked)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	ui.PrintHighlight("Current configuration")
	fmt.Fprintln(ui.Out, string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		ui.PrintError("Failed to read configuration file", err.Error())
		return err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		ui.PrintError("Invalid environment", err.Error())
		return err
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration is invalid")
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				fmt.Fprintf(ui.Out, "  - %s\n", e)
			}
		} else {
			fmt.Fprintf(ui.Out, "  - %s\n", err)
		}
		return err
	}

	if cfg.Validation.Enabled && cfg.Validation.TemplatePath != "" {
		if _, err := os.Stat(cfg.Validation.TemplatePath); err != nil {
			ui.PrintWarning("Validation template not readable", cfg.Validation.TemplatePath)
		}
	}
	if !cfg.HasCredentials() {
		ui.PrintWarning("No credentials configured, stored accounts or the environment will be used")
	}

	ui.PrintSuccess("Configuration is valid")
	return nil
}
