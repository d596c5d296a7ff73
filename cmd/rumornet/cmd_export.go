package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/rumornet/internal/export"
	"github.com/nvandessel/rumornet/internal/store"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export archived metric records to CSV or Arrow IPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			runID, _ := cmd.Flags().GetString("run")
			csvPath, _ := cmd.Flags().GetString("csv")
			arrowPath, _ := cmd.Flags().GetString("arrow")

			if csvPath == "" && arrowPath == "" {
				return fmt.Errorf("nothing to do: set --csv and/or --arrow")
			}

			arch, err := store.Open(dataDir)
			if err != nil {
				return err
			}
			defer arch.Close()

			rows, err := arch.Records(cmd.Context(), runID)
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
				return json.NewEncoder(out).Encode(map[string]any{"records": len(rows)})
			}
			fmt.Fprintf(out, "Exported %d records\n", len(rows))
			return nil
		},
	}

	cmd.Flags().String("run", "", "Export only this run's records")
	cmd.Flags().String("csv", "", "Write records to a CSV file")
	cmd.Flags().String("arrow", "", "Write records to an Arrow IPC file")

	return cmd
}
