package scenario

import (
	"fmt"

	"github.com/nvandessel/hyperscore/internal/simulation"
)

// Names of the built-in weighting profiles.
const (
	ProfileBalanced       = "Balanced"
	ProfilePerformance    = "Performance-Focused"
	ProfileCost           = "Cost-Focused"
	ProfileSustainability = "Sustainability-Focused"
)

// WeightProfile rescales meta-score weights by label. Labels missing from
// Scale keep their weight.
type WeightProfile struct {
	Name  string             `json:"name" yaml:"name" hcl:"name,label" validate:"required"`
	Scale map[string]float64 `json:"scale,omitempty" yaml:"scale,omitempty" hcl:"scale,optional"`
}

// Apply returns a copy of base with every weight whose label has a scale
// factor multiplied by it.
func (p WeightProfile) Apply(base simulation.MetaWeights) simulation.MetaWeights {
	out := base.Clone()
	for _, labels := range out {
		for label, w := range labels {
			if f, ok := p.Scale[label]; ok {
				labels[label] = w * f
			}
		}
	}
	return out
}

// VariantName names the run of a scenario under a profile.
func (p WeightProfile) VariantName(scenario string) string {
	return fmt.Sprintf("%s (%s)", scenario, p.Name)
}

// DefaultProfiles returns the four stock weighting profiles. Balanced leaves
// the weighting untouched.
func DefaultProfiles() []WeightProfile {
	return []WeightProfile{
		{Name: ProfileBalanced},
		{Name: ProfilePerformance, Scale: map[string]float64{
			"performance":         1.5,
			"structural_rigidity": 1.5,
			"stiffness_to_weight": 1.5,
			"cost":                0.5,
			"total_cost":          0.5,
			"sustainability":      0.5,
		}},
		{Name: ProfileCost, Scale: map[string]float64{
			"cost":           2.0,
			"total_cost":     2.0,
			"performance":    0.75,
			"sustainability": 0.75,
		}},
		{Name: ProfileSustainability, Scale: map[string]float64{
			"sustainability": 2.0,
			"cost":           0.75,
			"total_cost":     0.75,
			"performance":    0.75,
		}},
	}
}

// FindProfile returns the profile named name from profiles.
func FindProfile(profiles []WeightProfile, name string) (WeightProfile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return WeightProfile{}, false
}
