package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/rumornet/internal/logging"
	"github.com/nvandessel/rumornet/internal/metrics"
	"github.com/nvandessel/rumornet/internal/sim"
	"github.com/nvandessel/rumornet/internal/store"
)

func newResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume <run-id>",
		Short: "Resume an archived run from its snapshot",
		Long: `Restore the most recent snapshot of an archived run and continue
stepping it. Without --ticks the run continues to its original tick
ceiling; --ticks raises the ceiling by the given amount.

A resumed run follows the exact trajectory the uninterrupted run would
have taken: the snapshot carries the random generator state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			logLevel, _ := cmd.Flags().GetString("log-level")
			extraTicks, _ := cmd.Flags().GetInt("ticks")

			arch, err := store.Open(dataDir)
			if err != nil {
				return err
			}
			defer arch.Close()

			ctx := cmd.Context()
			data, err := arch.LoadSnapshot(ctx, args[0])
			if err != nil {
				return err
			}
			snap, err := sim.DecodeSnapshot(data)
			if err != nil {
				return err
			}
			if extraTicks > 0 {
				snap.Config.MaxTicks += extraTicks
			}

			logger := logging.NewLogger(logLevel, os.Stderr)
			r, err := sim.Restore(snap, sim.WithLogger(logger))
			if err != nil {
				return err
			}
			if r.Done() {
				return fmt.Errorf("run %s already reached its tick ceiling; use --ticks to extend it", args[0])
			}

			resumedAt := r.Tick()
			if err := r.Run(ctx); err != nil {
				return err
			}
			row := r.Row(0)

			if err := arch.RecordRun(ctx, r.ID(), r.Config(), r.Tick()); err != nil {
				return err
			}
			if err := arch.AppendRecords(ctx, []metrics.Row{row}); err != nil {
				return err
			}
			newSnap, err := r.Snapshot()
			if err != nil {
				return err
			}
			newData, err := newSnap.Encode()
			if err != nil {
				return err
			}
			if err := arch.SaveSnapshot(ctx, r.ID(), r.Tick(), newData); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"resumed_at": resumedAt,
					"result":     row,
				})
			}
			fmt.Fprintf(out, "Run %s resumed at tick %d, finished at tick %d\n", r.ID(), resumedAt, r.Tick())
			fmt.Fprintf(out, "  informed:    %.1f%%\n", row.ProportionInformed*100)
			fmt.Fprintf(out, "  mean belief: %.3f\n", row.MeanBelief)
			return nil
		},
	}

	cmd.Flags().Int("ticks", 0, "Raise the tick ceiling by this many ticks")

	return cmd
}
