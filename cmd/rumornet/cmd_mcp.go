package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/rumornet/internal/logging"
	"github.com/nvandessel/rumornet/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve simulation tools over the Model Context Protocol",
		Long: `Start an MCP server on stdio exposing run_simulation, get_metrics,
and list_runs, so agent tooling can drive experiments against the
shared results archive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			logLevel, _ := cmd.Flags().GetString("log-level")

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "rumornet",
				Version: version,
				DataDir: dataDir,
				// Logs go to stderr; stdout carries the MCP transport.
				Logger: logging.NewLogger(logLevel, os.Stderr),
			})
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}
}
