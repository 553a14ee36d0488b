// Package cmd holds the prices service commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wys-platform/prices/internal/pkg/config"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "prices",
	Short: "WYS construction price catalog and estimator",
	Long: `prices ingests the spreadsheet cost catalog, estimates project prices
and keeps the daily exchange-rate table.

Examples:
  prices serve
  prices import catalog.xlsx
  prices import-design design.xlsx
  prices rates refresh`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(cfgFile); err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := viper.GetString(constants.ViperLogLevelKey)
		if verbose {
			level = "debug"
		}
		if err := logger.Init(level, viper.GetString(constants.ViperLogFormatKey)); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(importDesignCmd)
	rootCmd.AddCommand(ratesCmd)
}
