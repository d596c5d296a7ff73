package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/rumornet/internal/config"
	"github.com/nvandessel/rumornet/internal/metrics"
	"github.com/nvandessel/rumornet/internal/sim"
	"github.com/nvandessel/rumornet/internal/topology"
)

// ListRunsInput defines the (empty) input for the list_runs tool.
type ListRunsInput struct{}

// registerTools registers the simulation tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "run_simulation",
		Description: "Run a rumor-spread simulation with the given parameters and archive its results",
	}, s.handleRunSimulation)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "get_metrics",
		Description: "Fetch archived metric records for one run or for all runs",
	}, s.handleGetMetrics)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_runs",
		Description: "List archived simulation runs, newest first",
	}, s.handleListRuns)
}

// buildConfig applies the non-zero tool arguments over the model defaults.
func buildConfig(args RunSimulationInput) *config.Config {
	cfg := config.Default()
	if args.PopulationSize != 0 {
		cfg.PopulationSize = args.PopulationSize
	}
	if args.NetworkType != "" {
		cfg.NetworkType = topology.Kind(args.NetworkType)
	}
	if args.MaxTicks != 0 {
		cfg.MaxTicks = args.MaxTicks
	}
	if args.LearningRate != 0 {
		cfg.LearningRate = args.LearningRate
	}
	if args.Seed != 0 {
		cfg.Seed = args.Seed
	}
	cfg.RumorIsTrue = args.RumorIsTrue
	cfg.VerifyRumor = args.VerifyRumor
	return cfg
}

func (s *Server) handleRunSimulation(ctx context.Context, req *sdk.CallToolRequest, args RunSimulationInput) (*sdk.CallToolResult, RunSimulationOutput, error) {
	cfg := buildConfig(args)

	r, err := sim.NewRun(cfg, sim.WithLogger(s.logger))
	if err != nil {
		return nil, RunSimulationOutput{}, err
	}
	if err := r.Run(ctx); err != nil {
		return nil, RunSimulationOutput{}, err
	}

	row := r.Row(0)
	if err := s.archive.RecordRun(ctx, r.ID(), cfg, r.Tick()); err != nil {
		return nil, RunSimulationOutput{}, fmt.Errorf("archiving run: %w", err)
	}
	if err := s.archive.AppendRecords(ctx, []metrics.Row{row}); err != nil {
		return nil, RunSimulationOutput{}, fmt.Errorf("archiving metrics: %w", err)
	}

	return nil, RunSimulationOutput{
		RunID:              r.ID(),
		Ticks:              r.Tick(),
		ProportionInformed: row.ProportionInformed,
		MeanBelief:         row.MeanBelief,
		Believers:          row.Believers,
		Verified:           row.Verified,
		VerificationTick:   row.VerificationTick,
	}, nil
}

func (s *Server) handleGetMetrics(ctx context.Context, req *sdk.CallToolRequest, args GetMetricsInput) (*sdk.CallToolResult, GetMetricsOutput, error) {
	records, err := s.archive.Records(ctx, args.RunID)
	if err != nil {
		return nil, GetMetricsOutput{}, fmt.Errorf("querying records: %w", err)
	}
	if records == nil {
		records = []metrics.Row{}
	}
	return nil, GetMetricsOutput{Records: records, Count: len(records)}, nil
}

func (s *Server) handleListRuns(ctx context.Context, req *sdk.CallToolRequest, args ListRunsInput) (*sdk.CallToolResult, ListRunsOutput, error) {
	infos, err := s.archive.ListRuns(ctx)
	if err != nil {
		return nil, ListRunsOutput{}, fmt.Errorf("listing runs: %w", err)
	}

	runs := make([]RunSummary, 0, len(infos))
	for _, info := range infos {
		runs = append(runs, RunSummary{
			ID:          info.ID,
			CreatedAt:   info.CreatedAt,
			NetworkType: info.NetworkType,
			RumorIsTrue: info.RumorIsTrue,
			Seed:        info.Seed,
			Ticks:       info.Ticks,
		})
	}
	return nil, ListRunsOutput{Runs: runs, Count: len(runs)}, nil
}
