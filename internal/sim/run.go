package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nvandessel/rumornet/internal/config"
	"github.com/nvandessel/rumornet/internal/logging"
	"github.com/nvandessel/rumornet/internal/metrics"
	"github.com/nvandessel/rumornet/internal/randx"
	"github.com/nvandessel/rumornet/internal/topology"
	"github.com/nvandessel/rumornet/internal/trust"
)

// seedBelief is the conviction assigned to initially informed agents.
const seedBelief = 1.0

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Run bundles all mutable state of one simulation: agents, the frozen
// network, the trust store, the tick counter, the verification flags, and
// the recorded time series. The engine is the sole mutator within a tick;
// ticks execute strictly sequentially.
type Run struct {
	id           string
	cfg          *config.Config
	rng          *randx.Source
	graph        *topology.Graph
	agents       []*Agent
	trust        *trust.Store
	tick         int
	verified     bool
	verifiedTick int
	series       metrics.Series

	logger  *slog.Logger
	tickLog *logging.TickLogger
}

// Option customizes a Run at construction time.
type Option func(*Run)

// WithLogger attaches an operational logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Run) { r.logger = l }
}

// WithTickLogger attaches a JSONL per-tick trace. Nil is valid and cheap.
func WithTickLogger(tl *logging.TickLogger) Option {
	return func(r *Run) { r.tickLog = tl }
}

// withID pins the run identifier; used when restoring snapshots.
func withID(id string) Option {
	return func(r *Run) { r.id = id }
}

// NewRun validates the configuration, builds the topology, samples agent
// traits and initial trust, and seeds the initially informed agents. The
// returned run is at tick 0 with empty time series.
func NewRun(cfg *config.Config, opts ...Option) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Run{
		id:           uuid.NewString(),
		cfg:          cfg,
		rng:          randx.New(cfg.Seed),
		verifiedTick: -1,
		logger:       discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	g, err := topology.Build(cfg.NetworkType, cfg.PopulationSize, cfg.AvgDegree, cfg.RewireProb, r.rng)
	if err != nil {
		return nil, fmt.Errorf("building topology: %w", err)
	}
	r.graph = g

	r.agents = make([]*Agent, cfg.PopulationSize)
	for i := range r.agents {
		r.agents[i] = &Agent{
			ID:                  i,
			SourcesSeen:         make(map[int]bool),
			AcceptanceThreshold: randx.ClampedNormal(r.rng, 0.5, cfg.HeterogeneityLevel, 0.1, 0.9),
			JudgmentQuality:     randx.ClampedNormal(r.rng, 0.5, cfg.HeterogeneityLevel, 0, 1),
		}
	}

	// Trust is initialized once, after the topology is fully frozen, so
	// edges introduced by small-world rewiring are covered.
	r.trust = trust.NewStore(cfg.PopulationSize, cfg.DefaultTrust)
	r.trust.Init(g, cfg.InitialTrustMean, cfg.InitialTrustSD, r.rng)

	seeds := cfg.InitialSeeds
	if seeds > cfg.PopulationSize {
		seeds = cfg.PopulationSize
	}
	for _, id := range randx.Perm(r.rng, cfg.PopulationSize)[:seeds] {
		r.agents[id].Informed = true
		r.agents[id].Belief = seedBelief
	}

	r.logger.Info("run initialized",
		"run_id", r.id,
		"population", cfg.PopulationSize,
		"network", string(cfg.NetworkType),
		"edges", g.EdgeCount(),
		"seeds", seeds)
	return r, nil
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Tick returns the number of completed ticks.
func (r *Run) Tick() int { return r.tick }

// Config returns the run configuration. Callers must not mutate it.
func (r *Run) Config() *config.Config { return r.cfg }

// Graph returns the frozen network. Callers must not mutate it.
func (r *Run) Graph() *topology.Graph { return r.graph }

// Agents returns the agent population. Callers must not mutate it; the
// renderer and exporters treat it as a read-only projection source.
func (r *Run) Agents() []*Agent { return r.agents }

// Trust returns the trust store. Callers must not mutate it.
func (r *Run) Trust() *trust.Store { return r.trust }

// Verified reports whether the verification event has fired and at which
// tick (-1 if it has not).
func (r *Run) Verified() (bool, int) { return r.verified, r.verifiedTick }

// Series returns a copy of the recorded time series.
func (r *Run) Series() metrics.Series { return r.series.Clone() }

// Done reports whether the run has reached its tick ceiling.
func (r *Run) Done() bool {
	return r.cfg.AutoStop && r.tick >= r.cfg.MaxTicks
}

// Step executes one tick: a full propagation pass, a trust learning pass
// every TrustUpdateInterval ticks, the verification event at its configured
// tick, then a statistics append reading the post-update state.
func (r *Run) Step() {
	r.tick++

	r.propagate()

	if r.tick%r.cfg.TrustUpdateInterval == 0 {
		r.learnTrust()
	}

	if r.cfg.VerifyRumor && !r.verified && r.tick == r.cfg.VerificationDelay {
		r.verify()
	}

	r.recordStats()
}

// Run steps until the tick ceiling is reached or the context is cancelled.
// Cancellation is only observed between ticks; a tick never stops midway.
func (r *Run) Run(ctx context.Context) error {
	for !r.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		r.Step()
	}
	r.logger.Info("run complete",
		"run_id", r.id,
		"ticks", r.tick,
		"proportion_informed", r.proportionInformed(),
		"mean_belief", r.meanBelief())
	return nil
}

// recordStats appends the three per-tick metrics. The trust variance entry
// is skipped when no trust values are stored.
func (r *Run) recordStats() {
	mean := r.meanBelief()
	prop := r.proportionInformed()
	r.series.MeanBelief = append(r.series.MeanBelief, mean)
	r.series.ProportionInformed = append(r.series.ProportionInformed, prop)

	event := map[string]any{
		"run_id":              r.id,
		"tick":                r.tick,
		"mean_belief":         mean,
		"proportion_informed": prop,
	}
	if v, ok := r.trust.Variance(); ok {
		r.series.TrustVariance = append(r.series.TrustVariance, v)
		event["trust_variance"] = v
	}
	if r.verified && r.verifiedTick == r.tick {
		event["verified"] = true
	}
	r.tickLog.Log(event)
}

func (r *Run) meanBelief() float64 {
	if len(r.agents) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range r.agents {
		sum += a.Belief
	}
	return sum / float64(len(r.agents))
}

func (r *Run) proportionInformed() float64 {
	if len(r.agents) == 0 {
		return 0
	}
	n := 0
	for _, a := range r.agents {
		if a.Informed {
			n++
		}
	}
	return float64(n) / float64(len(r.agents))
}

// Row materializes the current state as one export record.
func (r *Run) Row(repetition int) metrics.Row {
	var informedBeliefs []float64
	beliefs := make([]float64, 0, len(r.agents))
	believers := 0
	for _, a := range r.agents {
		beliefs = append(beliefs, a.Belief)
		if a.Informed {
			informedBeliefs = append(informedBeliefs, a.Belief)
		}
		if a.Belief > 0.5 {
			believers++
		}
	}
	trustVar, _ := r.trust.Variance()

	return metrics.Row{
		RunID:              r.id,
		Repetition:         repetition,
		Tick:               r.tick,
		NetworkType:        string(r.cfg.NetworkType),
		RumorIsTrue:        r.cfg.RumorIsTrue,
		Seed:               r.cfg.Seed,
		ProportionInformed: r.proportionInformed(),
		MeanBelief:         metrics.Mean(beliefs),
		MeanBeliefInformed: metrics.Mean(informedBeliefs),
		Believers:          believers,
		BeliefVariance:     metrics.Variance(beliefs),
		TrustVariance:      trustVar,
		Verified:           r.verified,
		VerificationTick:   r.verifiedTick,
	}
}
