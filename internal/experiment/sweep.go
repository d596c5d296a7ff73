// Package experiment runs parameter sweeps: the cartesian product of
// declared config axes, with repeated runs per cell under derived seeds.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/rumornet/internal/config"
	"github.com/nvandessel/rumornet/internal/metrics"
	"github.com/nvandessel/rumornet/internal/sim"
	"github.com/nvandessel/rumornet/internal/store"
	"github.com/nvandessel/rumornet/internal/topology"
)

// Sampling selects how many rows one run contributes.
type Sampling string

const (
	// SampleFinal emits one row per run, read at the final tick.
	SampleFinal Sampling = "final"
	// SamplePerTick emits one row every SampleEvery ticks plus the final
	// tick.
	SamplePerTick Sampling = "per-tick"
)

// Axes declares the swept dimensions. A nil or empty slice leaves the base
// config's value in place for that dimension.
type Axes struct {
	NetworkTypes        []topology.Kind `yaml:"network_types"`
	RumorIsTrue         []bool          `yaml:"rumor_is_true"`
	LearningRates       []float64       `yaml:"learning_rates"`
	PopulationSizes     []int           `yaml:"population_sizes"`
	HeterogeneityLevels []float64       `yaml:"heterogeneity_levels"`
	VerifyRumor         []bool          `yaml:"verify_rumor"`
}

// Sweep is a full experiment description.
type Sweep struct {
	Base        *config.Config `yaml:"base"`
	Axes        Axes           `yaml:"axes"`
	Repetitions int            `yaml:"repetitions"`
	Sampling    Sampling       `yaml:"sampling"`
	SampleEvery int            `yaml:"sample_every"`
}

// Load reads a sweep description from a YAML file. Unset base fields keep
// the model defaults; unset repetitions default to 1.
func Load(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep file: %w", err)
	}

	s := &Sweep{Base: config.Default()}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing sweep file: %w", err)
	}
	return s, nil
}

func (s *Sweep) normalize() error {
	if s.Base == nil {
		s.Base = config.Default()
	}
	if s.Repetitions <= 0 {
		s.Repetitions = 1
	}
	if s.Sampling == "" {
		s.Sampling = SampleFinal
	}
	if s.Sampling != SampleFinal && s.Sampling != SamplePerTick {
		return fmt.Errorf("sweep: sampling = %q (valid: final, per-tick)", s.Sampling)
	}
	if s.SampleEvery <= 0 {
		s.SampleEvery = 1
	}
	return s.Base.Validate()
}

// Cells enumerates the swept configurations in deterministic order. Each
// cell is an independent copy of the base config with one value per axis
// applied. Seeds are assigned by Run, not here.
func (s *Sweep) Cells() []*config.Config {
	cells := []*config.Config{cloneConfig(s.Base)}

	cells = expand(cells, s.Axes.NetworkTypes, func(c *config.Config, v topology.Kind) { c.NetworkType = v })
	cells = expand(cells, s.Axes.RumorIsTrue, func(c *config.Config, v bool) { c.RumorIsTrue = v })
	cells = expand(cells, s.Axes.LearningRates, func(c *config.Config, v float64) { c.LearningRate = v })
	cells = expand(cells, s.Axes.PopulationSizes, func(c *config.Config, v int) { c.PopulationSize = v })
	cells = expand(cells, s.Axes.HeterogeneityLevels, func(c *config.Config, v float64) { c.HeterogeneityLevel = v })
	cells = expand(cells, s.Axes.VerifyRumor, func(c *config.Config, v bool) { c.VerifyRumor = v })

	return cells
}

// expand multiplies the current cell set by one axis.
func expand[V any](cells []*config.Config, values []V, apply func(*config.Config, V)) []*config.Config {
	if len(values) == 0 {
		return cells
	}
	out := make([]*config.Config, 0, len(cells)*len(values))
	for _, c := range cells {
		for _, v := range values {
			cp := cloneConfig(c)
			apply(cp, v)
			out = append(out, cp)
		}
	}
	return out
}

func cloneConfig(c *config.Config) *config.Config {
	cp := *c
	return &cp
}

type runner struct {
	logger  *slog.Logger
	archive *store.Archive
}

// Option configures sweep execution.
type Option func(*runner)

// WithLogger sets the logger used for per-run progress.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) { r.logger = l }
}

// WithArchive persists run metadata and every emitted row.
func WithArchive(a *store.Archive) Option {
	return func(r *runner) { r.archive = a }
}

// Run executes every cell times Repetitions runs sequentially and returns
// the emitted rows. Seeds derive from the base seed, the cell index, and
// the repetition, so the whole sweep is reproducible from one seed.
func (s *Sweep) Run(ctx context.Context, opts ...Option) ([]metrics.Row, error) {
	if err := s.normalize(); err != nil {
		return nil, err
	}

	rn := &runner{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(rn)
	}

	cells := s.Cells()
	var rows []metrics.Row

	for ci, cell := range cells {
		for rep := 0; rep < s.Repetitions; rep++ {
			cfg := cloneConfig(cell)
			cfg.Seed = deriveSeed(s.Base.Seed, ci, rep)

			got, err := s.runOne(ctx, cfg, rep, rn)
			if err != nil {
				return rows, fmt.Errorf("cell %d repetition %d: %w", ci, rep, err)
			}
			rows = append(rows, got...)

			rn.logger.Info("sweep run complete",
				"cell", ci,
				"repetition", rep,
				"network_type", cfg.NetworkType,
				"rumor_is_true", cfg.RumorIsTrue,
				"seed", cfg.Seed)
		}
	}

	if rn.archive != nil {
		if err := rn.archive.AppendRecords(ctx, rows); err != nil {
			return rows, fmt.Errorf("archiving sweep rows: %w", err)
		}
	}
	return rows, nil
}

// deriveSeed spaces the cell seeds far apart so repetition offsets never
// collide across cells.
func deriveSeed(base uint64, cell, rep int) uint64 {
	return base + uint64(cell)*1_000_003 + uint64(rep)
}

func (s *Sweep) runOne(ctx context.Context, cfg *config.Config, rep int, rn *runner) ([]metrics.Row, error) {
	r, err := sim.NewRun(cfg, sim.WithLogger(rn.logger))
	if err != nil {
		return nil, err
	}

	// MaxTicks is a hard ceiling here, regardless of the auto-stop setting:
	// a sweep of unattended runs must always terminate.
	var rows []metrics.Row
	for r.Tick() < cfg.MaxTicks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		r.Step()
		if s.Sampling == SamplePerTick && (r.Tick()%s.SampleEvery == 0 || r.Tick() == cfg.MaxTicks) {
			rows = append(rows, r.Row(rep))
		}
	}
	if s.Sampling == SampleFinal {
		rows = append(rows, r.Row(rep))
	}

	if rn.archive != nil {
		if err := rn.archive.RecordRun(ctx, r.ID(), cfg, r.Tick()); err != nil {
			return nil, err
		}
	}
	return rows, nil
}
