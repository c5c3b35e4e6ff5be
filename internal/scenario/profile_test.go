package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nvandessel/hyperscore/internal/simulation"
)

func TestWeightProfile_Apply(t *testing.T) {
	base := simulation.MetaWeights{
		"n": {"total_cost": 0.4, "performance": 0.8},
	}
	p := WeightProfile{Name: "p", Scale: map[string]float64{"total_cost": 2, "unused": 10}}

	got := p.Apply(base)
	assert.InDelta(t, 0.8, got["n"]["total_cost"], 1e-12)
	assert.InDelta(t, 0.8, got["n"]["performance"], 1e-12)
	assert.Equal(t, 0.4, base["n"]["total_cost"], "base must not be mutated")
	assert.NotContains(t, got["n"], "unused")
}

func TestDefaultProfiles(t *testing.T) {
	profiles := DefaultProfiles()
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{ProfileBalanced, ProfilePerformance, ProfileCost, ProfileSustainability}, names)

	balanced, ok := FindProfile(profiles, ProfileBalanced)
	assert.True(t, ok)
	assert.Equal(t, simulation.DefaultMetaWeights(), balanced.Apply(simulation.DefaultMetaWeights()))

	sustain, _ := FindProfile(profiles, ProfileSustainability)
	weighted := sustain.Apply(simulation.DefaultMetaWeights())
	assert.InDelta(t, 1.0, weighted["technology_assessment"]["sustainability"], 1e-12)

	_, ok = FindProfile(profiles, "nope")
	assert.False(t, ok)
}

func TestEffectiveProfiles(t *testing.T) {
	assert.Len(t, Scenario{}.EffectiveProfiles(), 4)
	custom := Scenario{Profiles: []WeightProfile{{Name: "only"}}}
	assert.Equal(t, "only", custom.EffectiveProfiles()[0].Name)
}

func TestVariantName(t *testing.T) {
	assert.Equal(t, "Panel (Cost-Focused)", WeightProfile{Name: ProfileCost}.VariantName("Panel"))
}

func TestSimConfig_DoesNotAlias(t *testing.T) {
	s := Scenario{MetaWeights: simulation.MetaWeights{"a": {"b": 1}}}
	cfg := s.SimConfig(simulation.DefaultConfig())
	cfg.MetaWeights["a"]["b"] = 5
	assert.Equal(t, 1.0, s.MetaWeights["a"]["b"])
}
