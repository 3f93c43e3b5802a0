package main

import (
	"fmt"

	"bskyscraper/pkg/config"
	"bskyscraper/pkg/logger"
	"bskyscraper/pkg/storage"
	"bskyscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List saved datasets",
	Long:  `List the CSV datasets in the output directory with their record counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, globalFlags())
		if err != nil {
			ui.PrintError("Failed to load configuration", err.Error())
			return err
		}

		store := storage.NewManager(cfg.Output.Directory, logger.NewNopLogger())
		datasets, err := store.List()
		if err != nil {
			ui.PrintError("Failed to list datasets", err.Error())
			return err
		}
		if len(datasets) == 0 {
			ui.PrintWarning(fmt.Sprintf("No datasets in %s", store.OutputDir()))
			return nil
		}

		ui.PrintHighlight(fmt.Sprintf("Datasets in %s", store.OutputDir()))
		for _, d := range datasets {
			ui.PrintInfo(d.Name, fmt.Sprintf("%d posts", d.Records))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}
