// Package trust implements the per-agent sparse trust table. Trust is a
// directed relationship: agent i's trust in j is independent of j's trust
// in i. Unknown relationships read as a configured default rather than
// erroring, preserving the unknown-until-contacted semantics without dense
// N by N storage.
package trust

import (
	"github.com/nvandessel/rumornet/internal/randx"
	"github.com/nvandessel/rumornet/internal/topology"
)

// Store holds every agent's sparse trust table. Values are always in [0,1];
// all writes clamp, none reject.
type Store struct {
	tables []map[int]float64
	defVal float64
}

// NewStore creates an empty store for n agents with the given default value
// for unknown relationships.
func NewStore(n int, defaultValue float64) *Store {
	tables := make([]map[int]float64, n)
	for i := range tables {
		tables[i] = make(map[int]float64)
	}
	return &Store{tables: tables, defVal: randx.Clamp01(defaultValue)}
}

// Default returns the value reported for unknown relationships.
func (s *Store) Default() float64 { return s.defVal }

// Get returns agent's trust in neighbor, or the default if no value has
// been stored.
func (s *Store) Get(agent, neighbor int) float64 {
	if v, ok := s.tables[agent][neighbor]; ok {
		return v
	}
	return s.defVal
}

// Set stores agent's trust in neighbor, clamped to [0,1].
func (s *Store) Set(agent, neighbor int, v float64) {
	s.tables[agent][neighbor] = randx.Clamp01(v)
}

// Known reports whether an explicit value exists for the relationship.
func (s *Store) Known(agent, neighbor int) bool {
	_, ok := s.tables[agent][neighbor]
	return ok
}

// Table returns agent's stored relationships. The returned map is the live
// table; callers must not mutate it.
func (s *Store) Table(agent int) map[int]float64 { return s.tables[agent] }

// Init samples both directions of every edge in the frozen graph from a
// clamped normal distribution. It runs exactly once, after topology
// construction, so edges introduced by small-world rewiring are covered.
func (s *Store) Init(g *topology.Graph, mean, sd float64, rng *randx.Source) {
	for _, e := range g.Edges() {
		s.Set(e.Source, e.Target, randx.ClampedNormal(rng, mean, sd, 0, 1))
		s.Set(e.Target, e.Source, randx.ClampedNormal(rng, mean, sd, 0, 1))
	}
}

// Variance returns the population variance of every stored trust value
// across all agents, and false when no values are stored.
func (s *Store) Variance() (float64, bool) {
	var sum float64
	var count int
	for _, table := range s.tables {
		for _, v := range table {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	mean := sum / float64(count)
	var ss float64
	for _, table := range s.tables {
		for _, v := range table {
			d := v - mean
			ss += d * d
		}
	}
	return ss / float64(count), true
}

// Count returns the number of stored relationships.
func (s *Store) Count() int {
	total := 0
	for _, table := range s.tables {
		total += len(table)
	}
	return total
}
