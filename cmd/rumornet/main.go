package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "rumornet",
		Short: "Rumor spread simulation with adaptive trust",
		Long: `rumornet simulates how a rumor spreads through a social network of
agents that adapt their trust in each other over time.

Agents hear the rumor from neighbors, accept or reject it based on trust
and their own judgment, and periodically re-evaluate who to trust. An
optional verification event reveals the ground truth partway through.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("data-dir", ".rumornet", "Directory for the results archive")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newGridCmd(),
		newSweepCmd(),
		newResumeCmd(),
		newListCmd(),
		newExportCmd(),
		newMCPServerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
