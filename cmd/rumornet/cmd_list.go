package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/rumornet/internal/store"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			dataDir, _ := cmd.Flags().GetString("data-dir")

			arch, err := store.Open(dataDir)
			if err != nil {
				return err
			}
			defer arch.Close()

			runs, err := arch.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"runs":  runs,
					"count": len(runs),
				})
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No archived runs.")
				return nil
			}
			for _, r := range runs {
				truth := "false"
				if r.RumorIsTrue {
					truth = "true"
				}
				fmt.Fprintf(out, "%s  %s  %-11s  rumor=%s  seed=%d  ticks=%d\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.NetworkType, truth, r.Seed, r.Ticks)
			}
			return nil
		},
	}
}
