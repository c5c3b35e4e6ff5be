package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hyperscore",
		Short: "Design hypergraph scoring",
		Long: `hyperscore scores engineering design alternatives.

A design is a hypergraph of model nodes. Each node is scored by its model
function, scores diffuse along weighted value and functionality edges for a
fixed number of rounds, and a weighted meta-score ranks the design.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug, trace (overrides config)")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default ~/.hyperscore/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newStudyCmd(),
		newValidateCmd(),
		newGraphCmd(),
		newResultsCmd(),
		newModelsCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
