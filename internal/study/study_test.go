package study

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/hyperscore/internal/graph"
	"github.com/nvandessel/hyperscore/internal/models"
	"github.com/nvandessel/hyperscore/internal/scenario"
	"github.com/nvandessel/hyperscore/internal/simulation"
)

func TestPlan_Order(t *testing.T) {
	a := scenario.Scenario{Name: "A"}
	b := scenario.Scenario{Name: "B", Profiles: []scenario.WeightProfile{{Name: "only"}}}

	r := &Runner{Base: simulation.DefaultConfig()}
	jobs := r.Plan([]scenario.Scenario{a, b})

	var names []string
	for _, j := range jobs {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{
		"A (Balanced)",
		"A (Performance-Focused)",
		"A (Cost-Focused)",
		"A (Sustainability-Focused)",
		"B (only)",
	}, names)
}

func TestPlan_ProfileOverride(t *testing.T) {
	r := &Runner{
		Base:     simulation.DefaultConfig(),
		Profiles: []scenario.WeightProfile{{Name: "x", Scale: map[string]float64{"sustainability": 0}}},
	}
	jobs := r.Plan([]scenario.Scenario{{Name: "A"}})
	require.Len(t, jobs, 1)
	assert.Zero(t, jobs[0].Config.MetaWeights["technology_assessment"]["sustainability"])
	// The base weighting is untouched.
	assert.Equal(t, 0.5, r.Base.MetaWeights["technology_assessment"]["sustainability"])
}

func TestRun_SandwichPanelStudy(t *testing.T) {
	r := &Runner{
		Registry:    models.DefaultRegistry(),
		Base:        simulation.DefaultConfig(),
		Parallelism: 2,
	}
	results, err := r.Run(context.Background(), []scenario.Scenario{scenario.SandwichPanel()})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, p := range scenario.DefaultProfiles() {
		assert.Equal(t, p.Name, results[i].Profile)
		assert.Equal(t, scenario.SandwichPanelName, results[i].Base)
		assert.Equal(t, p.VariantName(scenario.SandwichPanelName), results[i].Scenario)
	}

	// Profiles only change the weighting, never the final scores.
	balanced, sustain := results[0], results[3]
	assert.Equal(t,
		balanced.Score("technology_assessment", "sustainability"),
		sustain.Score("technology_assessment", "sustainability"))
	assert.Greater(t, sustain.MetaScore, balanced.MetaScore)
}

func TestRun_MatchesSequential(t *testing.T) {
	scenarios := []scenario.Scenario{scenario.SandwichPanel()}
	reg := models.DefaultRegistry()

	parallel, err := (&Runner{Registry: reg, Base: simulation.DefaultConfig(), Parallelism: 4}).Run(context.Background(), scenarios)
	require.NoError(t, err)
	sequential, err := (&Runner{Registry: reg, Base: simulation.DefaultConfig(), Parallelism: 1}).Run(context.Background(), scenarios)
	require.NoError(t, err)

	require.Len(t, parallel, len(sequential))
	for i := range parallel {
		assert.Equal(t, sequential[i].Scenario, parallel[i].Scenario)
		assert.Equal(t, sequential[i].MetaScore, parallel[i].MetaScore)
	}
}

func TestRun_FailingJob(t *testing.T) {
	bad := scenario.Scenario{
		Name: "bad",
		Description: graph.Description{
			Edges: []graph.EdgeSpec{{Type: graph.EdgeTypeValue, Source: "a", Target: "b"}},
		},
	}
	_, err := (&Runner{Base: simulation.DefaultConfig()}).Run(context.Background(), []scenario.Scenario{bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrMalformedDescription))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Runner{Base: simulation.DefaultConfig()}).Run(ctx, []scenario.Scenario{scenario.SandwichPanel()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunScenario(t *testing.T) {
	iters := 3
	r := &Runner{
		Registry:  models.DefaultRegistry(),
		Base:      simulation.DefaultConfig(),
		Overrides: &scenario.Params{Iterations: &iters},
	}
	sc := scenario.SandwichPanel()

	plain, err := r.RunScenario(context.Background(), sc, "")
	require.NoError(t, err)
	assert.Equal(t, sc.Name, plain.Scenario)
	assert.Empty(t, plain.Base)
	assert.Empty(t, plain.Profile)
	assert.Equal(t, 3, plain.Config.Iterations, "override beats the base config")

	cost, err := r.RunScenario(context.Background(), sc, scenario.ProfileCost)
	require.NoError(t, err)
	assert.Equal(t, sc.Name, cost.Base)
	assert.Equal(t, scenario.ProfileCost, cost.Profile)
	assert.Equal(t, sc.Name+" ("+scenario.ProfileCost+")", cost.Scenario)

	_, err = r.RunScenario(context.Background(), sc, "No-Such-Profile")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestPlan_OverridesWinOverFile(t *testing.T) {
	fileIters, flagIters := 7, 2
	sc := scenario.Scenario{Name: "A", Simulation: &scenario.Params{Iterations: &fileIters}}

	jobs := (&Runner{Base: simulation.DefaultConfig()}).Plan([]scenario.Scenario{sc})
	require.NotEmpty(t, jobs)
	assert.Equal(t, 7, jobs[0].Config.Iterations)

	jobs = (&Runner{Base: simulation.DefaultConfig(), Overrides: &scenario.Params{Iterations: &flagIters}}).Plan([]scenario.Scenario{sc})
	assert.Equal(t, 2, jobs[0].Config.Iterations)
}
