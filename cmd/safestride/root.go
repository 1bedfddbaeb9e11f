package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	envFile  string
	logLevel string
	format   string
}

var rootCmd = &cobra.Command{
	Use:   "safestride",
	Short: "Pedestrian risk predictions from the SafeStride API",
	Long: "safestride submits incident, weather and location data to the SafeStride\n" +
		"prediction API and keeps a local history of the last assessments for\n" +
		"comparison and export.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.envFile, "env-file", "", "dotenv file to load (default .env when present)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "warn", "log level for stderr: debug, info, warn, error")
	pf.StringVar(&rootFlags.format, "format", formatTable, "output format: table, markdown, json")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}
