package mcp

import (
	"time"

	"github.com/nvandessel/rumornet/internal/metrics"
)

// RunSimulationInput defines the input for the run_simulation tool. Unset
// fields keep the model defaults.
type RunSimulationInput struct {
	PopulationSize int     `json:"population_size,omitempty" jsonschema:"Number of agents (10-500, default 100)"`
	NetworkType    string  `json:"network_type,omitempty" jsonschema:"Topology: 'random', 'small-world', or 'scale-free' (default 'small-world')"`
	RumorIsTrue    bool    `json:"rumor_is_true,omitempty" jsonschema:"Ground truth revealed at verification (default false)"`
	VerifyRumor    bool    `json:"verify_rumor,omitempty" jsonschema:"Enable the one-shot verification event (default false)"`
	MaxTicks       int     `json:"max_ticks,omitempty" jsonschema:"Run length in ticks (100-2000, default 500)"`
	LearningRate   float64 `json:"learning_rate,omitempty" jsonschema:"Trust learning EMA step size (0-0.5, default 0.1)"`
	Seed           uint64  `json:"seed,omitempty" jsonschema:"Random seed; equal seeds reproduce runs (default 1)"`
}

// RunSimulationOutput defines the output for the run_simulation tool.
type RunSimulationOutput struct {
	RunID              string  `json:"run_id" jsonschema:"ID of the archived run"`
	Ticks              int     `json:"ticks" jsonschema:"Number of ticks executed"`
	ProportionInformed float64 `json:"proportion_informed" jsonschema:"Fraction of agents that heard the rumor"`
	MeanBelief         float64 `json:"mean_belief" jsonschema:"Mean belief across all agents at the final tick"`
	Believers          int     `json:"believers" jsonschema:"Agents with belief above 0.5"`
	Verified           bool    `json:"verified" jsonschema:"Whether the verification event fired"`
	VerificationTick   int     `json:"verification_tick" jsonschema:"Tick of the verification event (-1 if none)"`
}

// GetMetricsInput defines the input for the get_metrics tool.
type GetMetricsInput struct {
	RunID string `json:"run_id,omitempty" jsonschema:"Run to fetch records for; empty fetches every archived record"`
}

// GetMetricsOutput defines the output for the get_metrics tool.
type GetMetricsOutput struct {
	Records []metrics.Row `json:"records" jsonschema:"Archived metric rows"`
	Count   int           `json:"count" jsonschema:"Number of records"`
}

// ListRunsOutput defines the output for the list_runs tool.
type ListRunsOutput struct {
	Runs  []RunSummary `json:"runs" jsonschema:"Archived runs, newest first"`
	Count int          `json:"count" jsonschema:"Number of runs"`
}

// RunSummary is a list view of one archived run.
type RunSummary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	NetworkType string    `json:"network_type"`
	RumorIsTrue bool      `json:"rumor_is_true"`
	Seed        uint64    `json:"seed"`
	Ticks       int       `json:"ticks"`
}
