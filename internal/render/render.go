// Package render projects core run state into a small sample structure a
// renderer polls after each tick. The projection is read-only: nothing
// here mutates agents, trust, or the network.
package render

import (
	"github.com/nvandessel/rumornet/internal/sim"
)

// Dot is one agent as drawn: color bucket from belief, size from exposure.
type Dot struct {
	ID       int     `json:"id"`
	Belief   float64 `json:"belief"`
	Informed bool    `json:"informed"`
	Color    string  `json:"color"`
	Size     float64 `json:"size"`
}

// Link is one undirected edge with its bidirectional trust averaged into a
// single thickness value.
type Link struct {
	Source    int     `json:"source"`
	Target    int     `json:"target"`
	Thickness float64 `json:"thickness"`
}

// Sample is one render frame.
type Sample struct {
	Tick            int    `json:"tick"`
	Dots            []Dot  `json:"dots"`
	Links           []Link `json:"links,omitempty"`
	BeliefHistogram []int  `json:"belief_histogram"`
}

// histogramBins is the bucket count of the live belief histogram.
const histogramBins = 10

// Take builds a render sample from the current run state. Trust links are
// included only when the run's configuration asks for them.
func Take(r *sim.Run) Sample {
	agents := r.Agents()
	s := Sample{
		Tick:            r.Tick(),
		Dots:            make([]Dot, len(agents)),
		BeliefHistogram: make([]int, histogramBins),
	}

	for i, a := range agents {
		s.Dots[i] = Dot{
			ID:       a.ID,
			Belief:   a.Belief,
			Informed: a.Informed,
			Color:    colorFor(a),
			Size:     sizeFor(a),
		}
		bin := int(a.Belief * histogramBins)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		s.BeliefHistogram[bin]++
	}

	if r.Config().ShowTrustLinks {
		edges := r.Graph().Edges()
		s.Links = make([]Link, len(edges))
		for i, e := range edges {
			avg := (r.Trust().Get(e.Source, e.Target) + r.Trust().Get(e.Target, e.Source)) / 2
			s.Links[i] = Link{Source: e.Source, Target: e.Target, Thickness: avg}
		}
	}

	return s
}

// colorFor buckets belief into the model's display palette: gray for
// unaware agents, then cold to hot with rising conviction.
func colorFor(a *sim.Agent) string {
	switch {
	case !a.Informed:
		return "gray"
	case a.Belief < 0.25:
		return "blue"
	case a.Belief < 0.5:
		return "green"
	case a.Belief < 0.75:
		return "orange"
	default:
		return "red"
	}
}

// sizeFor scales the dot with exposure count, capped so heavy re-exposure
// does not dominate the canvas.
func sizeFor(a *sim.Agent) float64 {
	size := 1.0 + 0.1*float64(a.TimesHeard)
	if size > 3.0 {
		size = 3.0
	}
	return size
}
