// Package scenario loads simulation scenarios from YAML, JSON and HCL files.
//
// A scenario bundles a graph description with optional run overrides, a
// meta-score weighting and a list of weighting profiles used by studies.
// A file holds either a single scenario or a list under "scenarios".
package scenario

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/nvandessel/hyperscore/internal/graph"
	"github.com/nvandessel/hyperscore/internal/simulation"
)

// Scenario is one named simulation input.
type Scenario struct {
	Name string `json:"name" yaml:"name" validate:"required"`

	graph.Description `yaml:",inline"`

	// Simulation overrides the configured run parameters when set.
	Simulation *Params `json:"simulation,omitempty" yaml:"simulation,omitempty"`

	// MetaWeights replaces the configured meta-score weighting when non-empty.
	MetaWeights simulation.MetaWeights `json:"meta_weights,omitempty" yaml:"meta_weights,omitempty"`

	// Profiles lists weighting variants for studies. Empty means DefaultProfiles.
	Profiles []WeightProfile `json:"profiles,omitempty" yaml:"profiles,omitempty" validate:"dive"`

	// Source is the file the scenario was loaded from, if any.
	Source string `json:"-" yaml:"-"`
}

// Params are per-scenario run overrides. Nil fields keep the base value.
type Params struct {
	Iterations *int     `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Alpha      *float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Beta       *float64 `json:"beta,omitempty" yaml:"beta,omitempty"`
}

// Apply returns cfg with the non-nil overrides set. A nil Params is a no-op.
func (p *Params) Apply(cfg simulation.Config) simulation.Config {
	if p == nil {
		return cfg
	}
	if p.Iterations != nil {
		cfg.Iterations = *p.Iterations
	}
	if p.Alpha != nil {
		cfg.Alpha = *p.Alpha
	}
	if p.Beta != nil {
		cfg.Beta = *p.Beta
	}
	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the scenario envelope, its graph description and that its
// overrides produce a valid run configuration.
func (s Scenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if err := s.Description.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if err := s.SimConfig(simulation.DefaultConfig()).Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return nil
}

// SimConfig merges the scenario's overrides onto base. The returned config
// never shares its weighting with base or the scenario.
func (s Scenario) SimConfig(base simulation.Config) simulation.Config {
	cfg := s.Simulation.Apply(base)
	cfg.MetaWeights = base.MetaWeights.Clone()
	if len(s.MetaWeights) > 0 {
		cfg.MetaWeights = s.MetaWeights.Clone()
	}
	return cfg
}

// Build constructs a fresh network from the scenario's description.
func (s Scenario) Build() (*graph.Network, error) {
	net, err := graph.Build(s.Description)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return net, nil
}

// EffectiveProfiles returns the scenario's profiles, or DefaultProfiles when
// none are declared.
func (s Scenario) EffectiveProfiles() []WeightProfile {
	if len(s.Profiles) == 0 {
		return DefaultProfiles()
	}
	return s.Profiles
}
