// Package metrics defines the time series recorded during a run and the
// flat record rows consumed by the experiment sweep and export facilities.
package metrics

// Series holds the three per-tick time series of a run. MeanBelief and
// ProportionInformed gain exactly one entry per tick. TrustVariance is
// skipped on ticks where no trust values are stored, so it may be shorter.
type Series struct {
	MeanBelief         []float64 `json:"mean_belief"`
	ProportionInformed []float64 `json:"proportion_informed"`
	TrustVariance      []float64 `json:"trust_variance"`
}

// Clone returns a deep copy of the series.
func (s Series) Clone() Series {
	cp := Series{
		MeanBelief:         make([]float64, len(s.MeanBelief)),
		ProportionInformed: make([]float64, len(s.ProportionInformed)),
		TrustVariance:      make([]float64, len(s.TrustVariance)),
	}
	copy(cp.MeanBelief, s.MeanBelief)
	copy(cp.ProportionInformed, s.ProportionInformed)
	copy(cp.TrustVariance, s.TrustVariance)
	return cp
}

// Len returns the number of recorded ticks.
func (s Series) Len() int { return len(s.MeanBelief) }

// Row is one exported record: the state of a run at a sampled tick. The
// sweep facility emits one row per run (final tick) or one per run-tick,
// depending on sampling mode.
type Row struct {
	RunID              string  `json:"run_id"`
	Repetition         int     `json:"repetition"`
	Tick               int     `json:"tick"`
	NetworkType        string  `json:"network_type"`
	RumorIsTrue        bool    `json:"rumor_is_true"`
	Seed               uint64  `json:"seed"`
	ProportionInformed float64 `json:"proportion_informed"`
	MeanBelief         float64 `json:"mean_belief"`
	MeanBeliefInformed float64 `json:"mean_belief_informed"`
	Believers          int     `json:"believers"`
	BeliefVariance     float64 `json:"belief_variance"`
	TrustVariance      float64 `json:"trust_variance"`
	Verified           bool    `json:"verified"`
	VerificationTick   int     `json:"verification_tick"`
}

// Mean returns the arithmetic mean of vs, or 0 for an empty slice.
func Mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// Variance returns the population variance of vs, or 0 for an empty slice.
func Variance(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	m := Mean(vs)
	ss := 0.0
	for _, v := range vs {
		d := v - m
		ss += d * d
	}
	return ss / float64(len(vs))
}
