// Package config provides configuration loading for rumornet simulations.
// It supports loading from YAML files and environment variables. Every
// parameter carries declared bounds; out-of-range values are rejected at
// load time with an error naming the offending field.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nvandessel/rumornet/internal/topology"
	"gopkg.in/yaml.v3"
)

// Config contains every recognized simulation setting.
type Config struct {
	// PopulationSize is the number of agents. Range: [10, 500].
	PopulationSize int `json:"population_size" yaml:"population_size"`

	// AvgDegree is the target average degree of the network. Range: [1, 20].
	// Requests at or above the population size are clamped by the topology
	// builder, not rejected here.
	AvgDegree int `json:"avg_degree" yaml:"avg_degree"`

	// InitialSeeds is the number of agents seeded as informed at tick 0.
	// Range: [1, 50].
	InitialSeeds int `json:"initial_seeds" yaml:"initial_seeds"`

	// NetworkType selects the topology generator: "random", "small-world",
	// or "scale-free".
	NetworkType topology.Kind `json:"network_type" yaml:"network_type"`

	// RewireProb is the per-edge rewiring probability for small-world
	// construction. Range: [0, 1].
	RewireProb float64 `json:"rewire_prob" yaml:"rewire_prob"`

	// RumorIsTrue is the hidden ground truth revealed at verification.
	RumorIsTrue bool `json:"rumor_is_true" yaml:"rumor_is_true"`

	// HeterogeneityLevel is the standard deviation used when sampling agent
	// traits. Range: [0, 0.5].
	HeterogeneityLevel float64 `json:"heterogeneity_level" yaml:"heterogeneity_level"`

	// LearningRate is the EMA step size for trust learning. Range: [0, 0.5].
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`

	// InitialTrustMean is the mean of the initial trust distribution.
	// Range: [0, 1].
	InitialTrustMean float64 `json:"initial_trust_mean" yaml:"initial_trust_mean"`

	// InitialTrustSD is the standard deviation of the initial trust
	// distribution. Range: [0, 0.3].
	InitialTrustSD float64 `json:"initial_trust_sd" yaml:"initial_trust_sd"`

	// HearingThreshold is the exposure count beyond which repeated exposure
	// alone forces acceptance. Range: [1, 10].
	HearingThreshold int `json:"hearing_threshold" yaml:"hearing_threshold"`

	// TrustUpdateInterval is the tick period of the trust learning pass.
	// Range: [5, 50].
	TrustUpdateInterval int `json:"trust_update_interval" yaml:"trust_update_interval"`

	// MaxTicks is the run length ceiling. Range: [100, 2000].
	MaxTicks int `json:"max_ticks" yaml:"max_ticks"`

	// AutoStop stops the run at MaxTicks.
	AutoStop bool `json:"auto_stop" yaml:"auto_stop"`

	// VerifyRumor enables the one-shot verification event.
	VerifyRumor bool `json:"verify_rumor" yaml:"verify_rumor"`

	// VerificationDelay is the tick at which verification fires.
	// Range: [50, 500].
	VerificationDelay int `json:"verification_delay" yaml:"verification_delay"`

	// ShowTrustLinks toggles trust-weighted edges in render samples.
	// Visualization only; no effect on dynamics.
	ShowTrustLinks bool `json:"show_trust_links" yaml:"show_trust_links"`

	// DefaultTrust is the value an agent reads for a neighbor it has no
	// stored relationship with. Range: [0, 1].
	DefaultTrust float64 `json:"default_trust" yaml:"default_trust"`

	// AgreementReinforcement is the reinforcement signal granted when an
	// unverified sender agrees with the receiver's own estimate.
	// Range: [0, 1].
	AgreementReinforcement float64 `json:"agreement_reinforcement" yaml:"agreement_reinforcement"`

	// AdjustmentFactor is the fraction applied to beliefs at verification.
	// Range: (0, 1].
	AdjustmentFactor float64 `json:"adjustment_factor" yaml:"adjustment_factor"`

	// Seed is the random seed for the run. Any value is valid; runs with
	// equal configs and seeds produce identical trajectories.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// Default returns a Config with the model's reference defaults.
func Default() *Config {
	return &Config{
		PopulationSize:         100,
		AvgDegree:              6,
		InitialSeeds:           3,
		NetworkType:            topology.SmallWorld,
		RewireProb:             0.1,
		RumorIsTrue:            false,
		HeterogeneityLevel:     0.2,
		LearningRate:           0.1,
		InitialTrustMean:       0.5,
		InitialTrustSD:         0.15,
		HearingThreshold:       3,
		TrustUpdateInterval:    10,
		MaxTicks:               500,
		AutoStop:               true,
		VerifyRumor:            false,
		VerificationDelay:      100,
		ShowTrustLinks:         false,
		DefaultTrust:           0.5,
		AgreementReinforcement: 0.7,
		AdjustmentFactor:       0.5,
		Seed:                   1,
	}
}

// Load loads configuration from an optional YAML file path and environment
// variable overrides, then validates. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file. The file only
// needs to set the fields it overrides; everything else keeps its default.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks every parameter against its declared bounds and returns a
// descriptive error naming the first offending field.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
		got  any
		want string
	}{
		{"population_size", c.PopulationSize >= 10 && c.PopulationSize <= 500, c.PopulationSize, "[10, 500]"},
		{"avg_degree", c.AvgDegree >= 1 && c.AvgDegree <= 20, c.AvgDegree, "[1, 20]"},
		{"initial_seeds", c.InitialSeeds >= 1 && c.InitialSeeds <= 50, c.InitialSeeds, "[1, 50]"},
		{"rewire_prob", c.RewireProb >= 0 && c.RewireProb <= 1, c.RewireProb, "[0, 1]"},
		{"heterogeneity_level", c.HeterogeneityLevel >= 0 && c.HeterogeneityLevel <= 0.5, c.HeterogeneityLevel, "[0, 0.5]"},
		{"learning_rate", c.LearningRate >= 0 && c.LearningRate <= 0.5, c.LearningRate, "[0, 0.5]"},
		{"initial_trust_mean", c.InitialTrustMean >= 0 && c.InitialTrustMean <= 1, c.InitialTrustMean, "[0, 1]"},
		{"initial_trust_sd", c.InitialTrustSD >= 0 && c.InitialTrustSD <= 0.3, c.InitialTrustSD, "[0, 0.3]"},
		{"hearing_threshold", c.HearingThreshold >= 1 && c.HearingThreshold <= 10, c.HearingThreshold, "[1, 10]"},
		{"trust_update_interval", c.TrustUpdateInterval >= 5 && c.TrustUpdateInterval <= 50, c.TrustUpdateInterval, "[5, 50]"},
		{"max_ticks", c.MaxTicks >= 100 && c.MaxTicks <= 2000, c.MaxTicks, "[100, 2000]"},
		{"verification_delay", c.VerificationDelay >= 50 && c.VerificationDelay <= 500, c.VerificationDelay, "[50, 500]"},
		{"default_trust", c.DefaultTrust >= 0 && c.DefaultTrust <= 1, c.DefaultTrust, "[0, 1]"},
		{"agreement_reinforcement", c.AgreementReinforcement >= 0 && c.AgreementReinforcement <= 1, c.AgreementReinforcement, "[0, 1]"},
		{"adjustment_factor", c.AdjustmentFactor > 0 && c.AdjustmentFactor <= 1, c.AdjustmentFactor, "(0, 1]"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("config: %s = %v out of range %s", ch.name, ch.got, ch.want)
		}
	}

	if !c.NetworkType.Valid() {
		return fmt.Errorf("config: network_type = %q (valid: random, small-world, scale-free)", c.NetworkType)
	}
	return nil
}

// applyEnvOverrides applies RUMORNET_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RUMORNET_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
	if v := os.Getenv("RUMORNET_POPULATION_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PopulationSize = n
		}
	}
	if v := os.Getenv("RUMORNET_NETWORK_TYPE"); v != "" {
		cfg.NetworkType = topology.Kind(v)
	}
	if v := os.Getenv("RUMORNET_MAX_TICKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTicks = n
		}
	}
	if v := os.Getenv("RUMORNET_RUMOR_IS_TRUE"); v != "" {
		cfg.RumorIsTrue = v == "true" || v == "1"
	}
	if v := os.Getenv("RUMORNET_VERIFY_RUMOR"); v != "" {
		cfg.VerifyRumor = v == "true" || v == "1"
	}
}
