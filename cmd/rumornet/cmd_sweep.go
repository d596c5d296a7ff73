package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/rumornet/internal/experiment"
	"github.com/nvandessel/rumornet/internal/export"
	"github.com/nvandessel/rumornet/internal/logging"
	"github.com/nvandessel/rumornet/internal/store"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep <sweep.yaml>",
		Short: "Run a parameter sweep described by a YAML file",
		Long: `Run every combination of the axes declared in the sweep file, with
the configured number of repetitions per combination. Results can be
archived and exported to CSV or Arrow IPC.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			logLevel, _ := cmd.Flags().GetString("log-level")
			archiveRuns, _ := cmd.Flags().GetBool("archive")
			csvPath, _ := cmd.Flags().GetString("csv")
			arrowPath, _ := cmd.Flags().GetString("arrow")

			s, err := experiment.Load(args[0])
			if err != nil {
				return err
			}

			opts := []experiment.Option{
				experiment.WithLogger(logging.NewLogger(logLevel, os.Stderr)),
			}
			if archiveRuns {
				arch, err := store.Open(dataDir)
				if err != nil {
					return err
				}
				defer arch.Close()
				opts = append(opts, experiment.WithArchive(arch))
			}

			rows, err := s.Run(cmd.Context(), opts...)
			if err != nil {
				return err
			}

			if csvPath != "" {
				if err := writeFile(csvPath, func(f *os.File) error {
					return export.WriteCSV(f, rows)
				}); err != nil {
					return err
				}
			}
			if arrowPath != "" {
				if err := writeFile(arrowPath, func(f *os.File) error {
					return export.WriteArrow(f, rows)
				}); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"cells":   len(s.Cells()),
					"records": len(rows),
				})
			}
			fmt.Fprintf(out, "Sweep finished: %d cells, %d records\n", len(s.Cells()), len(rows))
			return nil
		},
	}

	cmd.Flags().Bool("archive", false, "Store sweep runs and records in the data directory")
	cmd.Flags().String("csv", "", "Write records to a CSV file")
	cmd.Flags().String("arrow", "", "Write records to an Arrow IPC file")

	return cmd
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
