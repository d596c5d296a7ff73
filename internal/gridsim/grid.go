// Package gridsim implements the exposure diffusion model: a square grid of
// cells whose scalar exposure decays each tick while spreading to the four
// orthogonal neighbors. A cell whose exposure reaches the adoption threshold
// adopts, and adoption never reverts.
package gridsim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nvandessel/rumornet/internal/metrics"
	"github.com/nvandessel/rumornet/internal/randx"
)

// Config holds the grid model parameters.
type Config struct {
	// Width and Height are the grid dimensions. Range: [2, 256] each.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// DecayFactor multiplies every cell's exposure each tick. Range: [0, 1].
	DecayFactor float64 `json:"decay_factor" yaml:"decay_factor"`

	// SpreadFraction is the share of a neighbor's exposure received across
	// each of its four edges. Range: [0, 0.25].
	SpreadFraction float64 `json:"spread_fraction" yaml:"spread_fraction"`

	// AdoptionThreshold is the exposure level at which a cell adopts.
	// Range: (0, 1].
	AdoptionThreshold float64 `json:"adoption_threshold" yaml:"adoption_threshold"`

	// InitialSeeds is the number of cells starting at full exposure.
	// Range: [1, Width*Height].
	InitialSeeds int `json:"initial_seeds" yaml:"initial_seeds"`

	// MaxTicks is the run length. Range: [1, 10000].
	MaxTicks int `json:"max_ticks" yaml:"max_ticks"`

	// Seed is the random seed for seed-cell placement.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the reference grid parameters.
func DefaultConfig() *Config {
	return &Config{
		Width:             32,
		Height:            32,
		DecayFactor:       0.9,
		SpreadFraction:    0.05,
		AdoptionThreshold: 0.3,
		InitialSeeds:      3,
		MaxTicks:          200,
		Seed:              1,
	}
}

// Validate checks every parameter against its declared bounds.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
		got  any
		want string
	}{
		{"width", c.Width >= 2 && c.Width <= 256, c.Width, "[2, 256]"},
		{"height", c.Height >= 2 && c.Height <= 256, c.Height, "[2, 256]"},
		{"decay_factor", c.DecayFactor >= 0 && c.DecayFactor <= 1, c.DecayFactor, "[0, 1]"},
		{"spread_fraction", c.SpreadFraction >= 0 && c.SpreadFraction <= 0.25, c.SpreadFraction, "[0, 0.25]"},
		{"adoption_threshold", c.AdoptionThreshold > 0 && c.AdoptionThreshold <= 1, c.AdoptionThreshold, "(0, 1]"},
		{"max_ticks", c.MaxTicks >= 1 && c.MaxTicks <= 10000, c.MaxTicks, "[1, 10000]"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("gridsim: %s = %v out of range %s", ch.name, ch.got, ch.want)
		}
	}
	if c.InitialSeeds < 1 || c.InitialSeeds > c.Width*c.Height {
		return fmt.Errorf("gridsim: initial_seeds = %d out of range [1, %d]", c.InitialSeeds, c.Width*c.Height)
	}
	return nil
}

// Model is one grid simulation. Updates are synchronous: every cell's next
// exposure is computed from the current buffer before any cell is written.
type Model struct {
	cfg     *Config
	cur     []float64
	next    []float64
	adopted []bool
	tick    int
	series  metrics.Series
	logger  *slog.Logger
}

// New builds a model and places InitialSeeds cells at full exposure.
func New(cfg *Config, logger *slog.Logger) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	n := cfg.Width * cfg.Height
	m := &Model{
		cfg:     cfg,
		cur:     make([]float64, n),
		next:    make([]float64, n),
		adopted: make([]bool, n),
		logger:  logger,
	}

	rng := randx.New(cfg.Seed)
	for _, idx := range randx.Perm(rng, n)[:cfg.InitialSeeds] {
		m.cur[idx] = 1.0
		m.adopted[idx] = m.cur[idx] >= cfg.AdoptionThreshold
	}

	logger.Info("grid model created",
		"width", cfg.Width,
		"height", cfg.Height,
		"seeds", cfg.InitialSeeds,
		"seed", cfg.Seed)
	return m, nil
}

// Tick returns the number of completed ticks.
func (m *Model) Tick() int { return m.tick }

// Exposure returns the exposure of the cell at (x, y).
func (m *Model) Exposure(x, y int) float64 { return m.cur[y*m.cfg.Width+x] }

// Adopted reports whether the cell at (x, y) has adopted.
func (m *Model) Adopted(x, y int) bool { return m.adopted[y*m.cfg.Width+x] }

// Series returns a copy of the recorded per-tick statistics. MeanBelief
// carries mean exposure and ProportionInformed the adopted fraction.
func (m *Model) Series() metrics.Series { return m.series.Clone() }

// Done reports whether the run has reached its tick ceiling.
func (m *Model) Done() bool { return m.tick >= m.cfg.MaxTicks }

// Step advances the model one tick.
func (m *Model) Step() {
	m.tick++

	w, h := m.cfg.Width, m.cfg.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := m.cur[i] * m.cfg.DecayFactor
			if x > 0 {
				v += m.cur[i-1] * m.cfg.SpreadFraction
			}
			if x < w-1 {
				v += m.cur[i+1] * m.cfg.SpreadFraction
			}
			if y > 0 {
				v += m.cur[i-w] * m.cfg.SpreadFraction
			}
			if y < h-1 {
				v += m.cur[i+w] * m.cfg.SpreadFraction
			}
			m.next[i] = randx.Clamp01(v)
		}
	}
	m.cur, m.next = m.next, m.cur

	for i, v := range m.cur {
		if v >= m.cfg.AdoptionThreshold {
			m.adopted[i] = true
		}
	}

	m.recordStats()
}

// Run steps until the tick ceiling or context cancellation.
func (m *Model) Run(ctx context.Context) error {
	for !m.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		m.Step()
	}
	m.logger.Info("grid run complete",
		"ticks", m.tick,
		"mean_exposure", m.meanExposure(),
		"adopted", m.proportionAdopted())
	return nil
}

func (m *Model) recordStats() {
	m.series.MeanBelief = append(m.series.MeanBelief, m.meanExposure())
	m.series.ProportionInformed = append(m.series.ProportionInformed, m.proportionAdopted())
}

func (m *Model) meanExposure() float64 {
	sum := 0.0
	for _, v := range m.cur {
		sum += v
	}
	return sum / float64(len(m.cur))
}

func (m *Model) proportionAdopted() float64 {
	n := 0
	for _, a := range m.adopted {
		if a {
			n++
		}
	}
	return float64(n) / float64(len(m.adopted))
}
