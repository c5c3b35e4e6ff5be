package simulation

import (
	"fmt"
	"math"
	"sort"
)

// Config holds the tunable parameters of one simulation run.
type Config struct {
	// Iterations is the fixed number of propagation rounds. Default: 10.
	// There is no convergence test and no early exit.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Alpha is the functionality damping coefficient. Default: 0.5.
	// Higher values keep more of a node's own prior score.
	Alpha float64 `json:"alpha" yaml:"alpha"`

	// Beta is the value damping coefficient. Default: 0.5.
	Beta float64 `json:"beta" yaml:"beta"`

	// MetaWeights selects the (node, label) pairs reduced into the meta-score.
	MetaWeights MetaWeights `json:"meta_weights" yaml:"meta_weights"`
}

// Defaults for a simulation run.
const (
	DefaultIterations = 10
	DefaultAlpha      = 0.5
	DefaultBeta       = 0.5
)

// DefaultConfig returns the default run configuration.
func DefaultConfig() Config {
	return Config{
		Iterations:  DefaultIterations,
		Alpha:       DefaultAlpha,
		Beta:        DefaultBeta,
		MetaWeights: DefaultMetaWeights(),
	}
}

// Validate checks iteration count and damping ranges.
func (c Config) Validate() error {
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", c.Iterations)
	}
	if !inUnitInterval(c.Alpha) {
		return fmt.Errorf("alpha must be between 0 and 1, got %v", c.Alpha)
	}
	if !inUnitInterval(c.Beta) {
		return fmt.Errorf("beta must be between 0 and 1, got %v", c.Beta)
	}
	for node, labels := range c.MetaWeights {
		for label, w := range labels {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("meta weight %s.%s is not finite", node, label)
			}
		}
	}
	return nil
}

func inUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}

// MetaWeights maps node id to label to weight.
type MetaWeights map[string]map[string]float64

// DefaultMetaWeights returns the stock meta-score weighting.
func DefaultMetaWeights() MetaWeights {
	return MetaWeights{
		"technology_assessment": {"sustainability": 0.5, "cost": 0.3},
		"design_prediction":     {"performance": 0.8, "structural_rigidity": 0.6},
	}
}

// Clone returns a deep copy.
func (w MetaWeights) Clone() MetaWeights {
	if w == nil {
		return nil
	}
	out := make(MetaWeights, len(w))
	for node, labels := range w {
		inner := make(map[string]float64, len(labels))
		for label, v := range labels {
			inner[label] = v
		}
		out[node] = inner
	}
	return out
}

// Term is one (node, label, weight) entry of a weighting.
type Term struct {
	NodeID string
	Label  string
	Weight float64
}

// Terms flattens the weighting, ordered by node id then label, so that
// reductions over it are deterministic.
func (w MetaWeights) Terms() []Term {
	var terms []Term
	for node, labels := range w {
		for label, weight := range labels {
			terms = append(terms, Term{NodeID: node, Label: label, Weight: weight})
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].NodeID != terms[j].NodeID {
			return terms[i].NodeID < terms[j].NodeID
		}
		return terms[i].Label < terms[j].Label
	})
	return terms
}
