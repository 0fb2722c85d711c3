// Package cmd contains the content-discovery command tree.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "content-discovery",
	Short: "Content discovery scheduler and source registry",
	Long: `content-discovery manages registered content sources and schedules
periodic checks for them across four frequency tiers (hourly, daily,
weekly, monthly), each backed by its own job queue.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// A missing .env file is fine; the environment may already be set.
		_ = godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(cleanupCmd)
}
