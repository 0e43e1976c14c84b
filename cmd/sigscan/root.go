package main

import (
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	quiet      bool
	configPath string
	colorMode  string
)

var rootCmd = &cobra.Command{
	Use:   "sigscan",
	Short: "sigscan - find byte signatures in process memory",
	Long: `sigscan locates a masked byte pattern ("48 8B ?? ?? 05") inside the loaded
modules of a running process, or inside module dump files, and reports the
lowest matching offset in each module.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./.sigscan.yml, then $XDG_CONFIG_HOME/sigscan/config.yml)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Color output: auto, always, never")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
