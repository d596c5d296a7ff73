package sim

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nvandessel/rumornet/internal/config"
	"github.com/nvandessel/rumornet/internal/metrics"
	"github.com/nvandessel/rumornet/internal/randx"
	"github.com/nvandessel/rumornet/internal/topology"
	"github.com/nvandessel/rumornet/internal/trust"
)

// TrustEntry is one directed trust relationship in a snapshot.
type TrustEntry struct {
	Agent    int     `json:"agent"`
	Neighbor int     `json:"neighbor"`
	Value    float64 `json:"value"`
}

// Snapshot captures the complete state of a run at a tick boundary:
// configuration, agents, topology, trust, verification flags, time series,
// and the random generator state. Restoring a snapshot and continuing
// yields the same trajectory as an uninterrupted run.
type Snapshot struct {
	RunID        string          `json:"run_id"`
	Config       config.Config   `json:"config"`
	Tick         int             `json:"tick"`
	Verified     bool            `json:"verified"`
	VerifiedTick int             `json:"verified_tick"`
	Agents       []*Agent        `json:"agents"`
	Edges        []topology.Edge `json:"edges"`
	Trust        []TrustEntry    `json:"trust"`
	RNGState     []byte          `json:"rng_state"`
	Series       metrics.Series  `json:"series"`
}

// Snapshot captures the run's full state. Call it only between ticks; a
// tick never suspends, so there is no mid-tick state to capture.
func (r *Run) Snapshot() (*Snapshot, error) {
	rngState, err := r.rng.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("capturing rng state: %w", err)
	}

	agents := make([]*Agent, len(r.agents))
	for i, a := range r.agents {
		cp := *a
		cp.SourcesSeen = make(map[int]bool, len(a.SourcesSeen))
		for k, v := range a.SourcesSeen {
			cp.SourcesSeen[k] = v
		}
		cp.MessageLog = append([]Message(nil), a.MessageLog...)
		agents[i] = &cp
	}

	var entries []TrustEntry
	for id := range r.agents {
		for nb, v := range r.trust.Table(id) {
			entries = append(entries, TrustEntry{Agent: id, Neighbor: nb, Value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Agent != entries[j].Agent {
			return entries[i].Agent < entries[j].Agent
		}
		return entries[i].Neighbor < entries[j].Neighbor
	})

	return &Snapshot{
		RunID:        r.id,
		Config:       *r.cfg,
		Tick:         r.tick,
		Verified:     r.verified,
		VerifiedTick: r.verifiedTick,
		Agents:       agents,
		Edges:        r.graph.Edges(),
		Trust:        entries,
		RNGState:     rngState,
		Series:       r.series.Clone(),
	}, nil
}

// Restore reconstructs a run from a snapshot. Nothing is replayed: the
// topology, traits, trust table and generator state come straight from the
// snapshot, and stepping continues from the captured tick.
func Restore(s *Snapshot, opts ...Option) (*Run, error) {
	cfg := s.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}

	rng := randx.New(cfg.Seed)
	if err := rng.UnmarshalBinary(s.RNGState); err != nil {
		return nil, fmt.Errorf("restoring rng state: %w", err)
	}

	g := topology.NewGraph(cfg.PopulationSize)
	for _, e := range s.Edges {
		g.AddEdge(e.Source, e.Target)
	}

	ts := trust.NewStore(cfg.PopulationSize, cfg.DefaultTrust)
	for _, e := range s.Trust {
		ts.Set(e.Agent, e.Neighbor, e.Value)
	}

	if len(s.Agents) != cfg.PopulationSize {
		return nil, fmt.Errorf("restoring snapshot: %d agents for population %d", len(s.Agents), cfg.PopulationSize)
	}
	// The run takes its own copies; stepping it must never write into the
	// caller's snapshot.
	agents := make([]*Agent, len(s.Agents))
	for i, a := range s.Agents {
		cp := *a
		cp.SourcesSeen = make(map[int]bool, len(a.SourcesSeen))
		for k, v := range a.SourcesSeen {
			cp.SourcesSeen[k] = v
		}
		cp.MessageLog = append([]Message(nil), a.MessageLog...)
		agents[i] = &cp
	}

	r := &Run{
		id:           s.RunID,
		cfg:          &cfg,
		rng:          rng,
		graph:        g,
		agents:       agents,
		trust:        ts,
		tick:         s.Tick,
		verified:     s.Verified,
		verifiedTick: s.VerifiedTick,
		series:       s.Series.Clone(),
	}
	r.logger = discardLogger()
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Encode serializes the snapshot to JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses a JSON-encoded snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &s, nil
}
