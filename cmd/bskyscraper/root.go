package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"bskyscraper/pkg/config"
	"bskyscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	noLogo     bool
)

var rootCmd = &cobra.Command{
	Use:   "bskyscraper [query]",
	Short: "Search Bluesky posts and save them as CSV",
	Long: `bskyscraper searches Bluesky posts through the AT Protocol API and saves
author, content, timestamp and post link of every hit to a CSV file.

Run it without arguments to be prompted for a query. Results are written to
"<output directory>/<query>.csv", replacing any previous file of that name.
Use 'bskyscraper search' for filters, merging into an existing dataset and
link validation.

Credentials come from 'bskyscraper auth login', the BLUESKY_HANDLE and
BLUESKY_APP_PASSWORD environment variables (a .env file works too) or the
configuration file.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:    cobra.ArbitraryArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuiet(true)
		}
		if !noLogo && cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintLogo()
		}
	},
	RunE: runDirect,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.bskyscraper.yaml or ~/.config/bskyscraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&noLogo, "no-logo", false, "do not print the banner")

	rootCmd.SetVersionTemplate(`bskyscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// runDirect is the interactive flow: log in, ask for a query and replace <query>.csv
func runDirect(cmd *cobra.Command, args []string) error {
	return run(cmd, runOptions{
		query:    strings.TrimSpace(strings.Join(args, " ")),
		flags:    globalFlags(),
		strategy: config.StrategyReplace,
		prompt:   func() (string, error) { return promptQuery(cmd) },
	})
}

func promptQuery(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter your Query: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", fmt.Errorf("failed to read query: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// globalFlags returns the persistent flags in the shape config.Load expects
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}
