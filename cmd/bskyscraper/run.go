package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"bskyscraper/pkg/auth"
	"bskyscraper/pkg/bluesky"
	"bskyscraper/pkg/config"
	"bskyscraper/pkg/logger"
	"bskyscraper/pkg/scraper"
	"bskyscraper/pkg/storage"
	"bskyscraper/pkg/ui"

	"github.com/spf13/cobra"
)

type runOptions struct {
	query    string
	params   bluesky.QueryParams
	flags    map[string]interface{}
	account  string
	strategy string // overrides the configured strategy when set
	output   string // explicit dataset file

	// prompt asks for the query once authenticated when query is empty
	prompt func() (string, error)
}

// run loads configuration, authenticates and executes one search. An empty
// query after login is not an error.
func run(cmd *cobra.Command, opts runOptions) error {
	cfg, err := config.Load(configFile, opts.flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}
	if opts.strategy != "" {
		cfg.Output.Strategy = opts.strategy
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintWarning("Failed to initialize logger", err.Error())
	}
	log := logger.GetLogger().WithField("version", version)

	store := storage.NewManager(cfg.Output.Directory, log)
	if err := store.EnsureOutputDir(); err != nil {
		ui.PrintWarning("Unable to create output directory", err.Error())
	}

	account, err := resolveAccount(cfg, opts.account, log)
	if err != nil {
		ui.PrintError("No Bluesky credentials found")
		fmt.Fprintln(ui.Out, "\nTo store an app password, run:")
		fmt.Fprintln(ui.Out, "  bskyscraper auth login")
		fmt.Fprintln(ui.Out, "\nOr set environment variables (a .env file works too):")
		fmt.Fprintln(ui.Out, "  export BLUESKY_HANDLE=you.bsky.social")
		fmt.Fprintln(ui.Out, "  export BLUESKY_APP_PASSWORD=xxxx-xxxx-xxxx-xxxx")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	s := scraper.New(cfg, bluesky.NewClient(cfg.Bluesky.BaseURL, cfg.Bluesky.Timeout, log), store, log)

	ui.PrintInfo("Account", account.Handle)
	if err := s.Authenticate(ctx, account.Handle, account.AppPassword); err != nil {
		log.WithError(err).WithField("handle", account.Handle).Error("Authentication failed")
		ui.PrintError("Authentication failed", err.Error())
		return err
	}

	query := opts.query
	if query == "" && opts.prompt != nil {
		query, err = opts.prompt()
		if err != nil {
			log.WithError(err).Warn("Failed to read query")
		}
	}
	if query == "" {
		log.Info("Empty query, nothing to search")
		ui.PrintWarning("No posts to save")
		return nil
	}

	params := opts.params
	params.Query = query
	ui.PrintInfo("Query", params.Query)

	var result *scraper.Result
	if opts.output != "" {
		result, err = s.RunTo(ctx, params, opts.output)
	} else {
		result, err = s.Run(ctx, params)
	}

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		ui.PrintWarning("Interrupted, partial results were saved")
	default:
		log.WithError(err).Error("Search failed")
		ui.PrintError("Search failed", err.Error())
		return err
	}

	if result == nil {
		return nil
	}
	if result.Path != "" {
		ui.PrintInfo("Saved", result.Path)
	}
	ui.PrintSuccess(result.Summary)
	return nil
}

// resolveAccount picks credentials: --account, then config/env, then the
// most recently stored account.
func resolveAccount(cfg *config.Config, accountName string, log logger.Logger) (*auth.Account, error) {
	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("Credential store unavailable, using environment only")
		manager = auth.NewManagerWithStores(auth.NewEnvironmentStore())
	}
	return manager.Resolve(accountName, cfg.Bluesky.Handle, cfg.Bluesky.AppPassword)
}
