package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/rumornet/internal/config"
	"github.com/nvandessel/rumornet/internal/logging"
	"github.com/nvandessel/rumornet/internal/metrics"
	"github.com/nvandessel/rumornet/internal/render"
	"github.com/nvandessel/rumornet/internal/sim"
	"github.com/nvandessel/rumornet/internal/store"
	"github.com/nvandessel/rumornet/internal/topology"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single simulation",
		Long: `Run a single rumor-spread simulation and print its final metrics.

Flags override values from the config file. With --archive, the run's
metadata, metrics, and a resumable snapshot are stored in the data
directory; continue an archived run later with 'rumornet resume'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			logLevel, _ := cmd.Flags().GetString("log-level")
			configPath, _ := cmd.Flags().GetString("config")
			archiveRun, _ := cmd.Flags().GetBool("archive")
			showSample, _ := cmd.Flags().GetBool("render-sample")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logging.NewLogger(logLevel, os.Stderr)
			tickLog := logging.NewTickLogger(dataDir, logLevel)
			defer tickLog.Close()

			r, err := sim.NewRun(cfg, sim.WithLogger(logger), sim.WithTickLogger(tickLog))
			if err != nil {
				return err
			}
			if err := r.Run(cmd.Context()); err != nil {
				return err
			}
			row := r.Row(0)

			if archiveRun {
				if err := archiveFinishedRun(cmd, r, cfg, row); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				result := map[string]any{"result": row}
				if showSample {
					result["sample"] = render.Take(r)
				}
				return json.NewEncoder(out).Encode(result)
			}

			fmt.Fprintf(out, "Run %s finished after %d ticks\n", r.ID(), r.Tick())
			fmt.Fprintf(out, "  informed:    %.1f%%\n", row.ProportionInformed*100)
			fmt.Fprintf(out, "  mean belief: %.3f\n", row.MeanBelief)
			fmt.Fprintf(out, "  believers:   %d\n", row.Believers)
			if row.Verified {
				truth := "false"
				if cfg.RumorIsTrue {
					truth = "true"
				}
				fmt.Fprintf(out, "  verified %s at tick %d\n", truth, row.VerificationTick)
			}
			return nil
		},
	}

	cmd.Flags().String("config", "", "Path to a YAML config file")
	cmd.Flags().Bool("archive", false, "Store results and a resumable snapshot in the data directory")
	cmd.Flags().Bool("render-sample", false, "Include a visualization sample in JSON output")
	cmd.Flags().Uint64("seed", 0, "Random seed")
	cmd.Flags().Int("population", 0, "Population size")
	cmd.Flags().Int("ticks", 0, "Run length in ticks")
	cmd.Flags().String("network", "", "Network type (random, small-world, scale-free)")
	cmd.Flags().Bool("verify", false, "Enable the verification event")
	cmd.Flags().Bool("true", false, "Make the rumor true")

	return cmd
}

// applyRunFlags overrides config fields with explicitly set flags.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("population") {
		cfg.PopulationSize, _ = cmd.Flags().GetInt("population")
	}
	if cmd.Flags().Changed("ticks") {
		cfg.MaxTicks, _ = cmd.Flags().GetInt("ticks")
	}
	if cmd.Flags().Changed("network") {
		v, _ := cmd.Flags().GetString("network")
		cfg.NetworkType = topology.Kind(v)
	}
	if cmd.Flags().Changed("verify") {
		cfg.VerifyRumor, _ = cmd.Flags().GetBool("verify")
	}
	if cmd.Flags().Changed("true") {
		cfg.RumorIsTrue, _ = cmd.Flags().GetBool("true")
	}
}

// archiveFinishedRun records the run, its final metrics row, and a snapshot
// for later resumption.
func archiveFinishedRun(cmd *cobra.Command, r *sim.Run, cfg *config.Config, row metrics.Row) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	arch, err := store.Open(dataDir)
	if err != nil {
		return err
	}
	defer arch.Close()

	ctx := cmd.Context()
	if err := arch.RecordRun(ctx, r.ID(), cfg, r.Tick()); err != nil {
		return err
	}
	if err := arch.AppendRecords(ctx, []metrics.Row{row}); err != nil {
		return err
	}

	snap, err := r.Snapshot()
	if err != nil {
		return err
	}
	data, err := snap.Encode()
	if err != nil {
		return err
	}
	return arch.SaveSnapshot(ctx, r.ID(), r.Tick(), data)
}
