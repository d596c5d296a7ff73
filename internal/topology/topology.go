// Package topology builds the social network the rumor spreads over.
// Three generators are supported: random partner selection, a Watts-Strogatz
// style small-world ring with one-time rewiring, and a scale-free variant
// that attaches new nodes uniformly among existing ones.
//
// The graph is built once at setup and frozen before the dynamic phase;
// nothing mutates edges afterward.
package topology

import (
	"fmt"
	"sort"

	"github.com/nvandessel/rumornet/internal/randx"
)

// Kind selects a network generator.
type Kind string

const (
	Random     Kind = "random"
	SmallWorld Kind = "small-world"
	ScaleFree  Kind = "scale-free"
)

// Valid reports whether k names a known generator.
func (k Kind) Valid() bool {
	switch k {
	case Random, SmallWorld, ScaleFree:
		return true
	}
	return false
}

// Graph is an undirected simple graph over agent IDs 0..N-1. The vertex set
// is fixed at construction; the edge set is frozen once Build returns.
type Graph struct {
	n   int
	adj []map[int]bool
}

// NewGraph creates an edgeless graph over n vertices.
func NewGraph(n int) *Graph {
	adj := make([]map[int]bool, n)
	for i := range adj {
		adj[i] = make(map[int]bool)
	}
	return &Graph{n: n, adj: adj}
}

// Size returns the number of vertices.
func (g *Graph) Size() int { return g.n }

// AddEdge links a and b. Self-loops and duplicate edges are ignored.
func (g *Graph) AddEdge(a, b int) {
	if a == b || a < 0 || b < 0 || a >= g.n || b >= g.n {
		return
	}
	g.adj[a][b] = true
	g.adj[b][a] = true
}

// RemoveEdge unlinks a and b if the edge exists.
func (g *Graph) RemoveEdge(a, b int) {
	if a < 0 || b < 0 || a >= g.n || b >= g.n {
		return
	}
	delete(g.adj[a], b)
	delete(g.adj[b], a)
}

// HasEdge reports whether a and b are linked.
func (g *Graph) HasEdge(a, b int) bool {
	if a < 0 || a >= g.n {
		return false
	}
	return g.adj[a][b]
}

// Degree returns the number of neighbors of v.
func (g *Graph) Degree(v int) int { return len(g.adj[v]) }

// Neighbors returns the neighbor IDs of v in ascending order. Sorting keeps
// downstream random selection reproducible across runs with the same seed.
func (g *Graph) Neighbors(v int) []int {
	out := make([]int, 0, len(g.adj[v]))
	for id := range g.adj[v] {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Edge is an undirected edge with Source < Target.
type Edge struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Edges returns every edge exactly once, ordered by (Source, Target).
func (g *Graph) Edges() []Edge {
	var out []Edge
	for a := 0; a < g.n; a++ {
		for b := range g.adj[a] {
			if a < b {
				out = append(out, Edge{Source: a, Target: b})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, nbrs := range g.adj {
		total += len(nbrs)
	}
	return total / 2
}

// Build constructs a graph of the given kind over n agents targeting average
// degree d. rewireProb is only consulted by the small-world generator.
// Degree requests are clamped to n-1; a degenerate request (d >= n) is not
// an error. An unknown kind is the only failure mode.
func Build(kind Kind, n, d int, rewireProb float64, rng *randx.Source) (*Graph, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("topology: unknown kind %q", kind)
	}
	if n < 0 {
		n = 0
	}
	if d > n-1 {
		d = n - 1
	}
	if d < 0 {
		d = 0
	}

	g := NewGraph(n)
	switch kind {
	case Random:
		buildRandom(g, d, rng)
	case SmallWorld:
		buildSmallWorld(g, d, rewireProb, rng)
	case ScaleFree:
		buildScaleFree(g, d, rng)
	}
	return g, nil
}

// buildRandom links each agent to d distinct partners drawn uniformly from
// the agents it is not already linked to. Because selection is per-agent
// rather than globally coordinated, the realized degree distribution is
// irregular; that is a known property of this generator, not a defect.
func buildRandom(g *Graph, d int, rng *randx.Source) {
	for a := 0; a < g.n; a++ {
		candidates := nonNeighbors(g, a)
		want := d
		if want > len(candidates) {
			want = len(candidates)
		}
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, b := range candidates[:want] {
			g.AddEdge(a, b)
		}
	}
}

// buildSmallWorld builds a ring lattice linking each agent to the d/2
// nearest agents on each side, then rewires each edge with probability p by
// detaching its far endpoint and reattaching to a uniformly random
// non-neighbor. Rewiring is a single bounded pass over the initial lattice.
func buildSmallWorld(g *Graph, d int, p float64, rng *randx.Source) {
	half := d / 2
	if half < 1 && d > 0 {
		half = 1
	}
	for a := 0; a < g.n; a++ {
		for k := 1; k <= half; k++ {
			g.AddEdge(a, (a+k)%g.n)
		}
	}

	// One-time rewiring pass over the frozen lattice edge list. Edges added
	// by rewiring are not themselves candidates for rewiring.
	for _, e := range g.Edges() {
		if rng.Float64() >= p {
			continue
		}
		candidates := nonNeighbors(g, e.Source)
		if len(candidates) == 0 {
			continue
		}
		g.RemoveEdge(e.Source, e.Target)
		g.AddEdge(e.Source, candidates[rng.IntN(len(candidates))])
	}
}

// buildScaleFree seeds a complete core of the first d agents, then attaches
// each remaining agent in identity order to min(d, existing) agents drawn
// uniformly from those already incorporated. Uniform attachment is a
// simplification of Barabasi-Albert, which weights by degree.
func buildScaleFree(g *Graph, d int, rng *randx.Source) {
	core := d
	if core > g.n {
		core = g.n
	}
	for a := 0; a < core; a++ {
		for b := a + 1; b < core; b++ {
			g.AddEdge(a, b)
		}
	}

	for a := core; a < g.n; a++ {
		existing := make([]int, a)
		for i := range existing {
			existing[i] = i
		}
		want := d
		if want > len(existing) {
			want = len(existing)
		}
		rng.Shuffle(len(existing), func(i, j int) {
			existing[i], existing[j] = existing[j], existing[i]
		})
		for _, b := range existing[:want] {
			g.AddEdge(a, b)
		}
	}
}

// nonNeighbors returns the agents v is not linked to, excluding v itself,
// in ascending order.
func nonNeighbors(g *Graph, v int) []int {
	out := make([]int, 0, g.n)
	for b := 0; b < g.n; b++ {
		if b != v && !g.adj[v][b] {
			out = append(out, b)
		}
	}
	return out
}
