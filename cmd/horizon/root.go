package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "horizon",
	Short: "Upcoming game release aggregator",
	Long: `horizon - upcoming game release aggregator

Lists a platform's upcoming releases from IGDB, optionally with
localized titles, and enriches titles with production-crew facts
on demand.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: auto-discover)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("horizon {{.Version}}\n")
}
