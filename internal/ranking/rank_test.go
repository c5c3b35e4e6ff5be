package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/hyperscore/internal/simulation"
)

func result(scenario, base, profile string, meta float64) *simulation.Result {
	return &simulation.Result{Scenario: scenario, Base: base, Profile: profile, MetaScore: meta}
}

func TestRank(t *testing.T) {
	results := []*simulation.Result{
		result("b", "", "", 0.5),
		nil,
		result("c", "", "", 0.9),
		result("a", "", "", 0.5),
	}

	ranked := Rank(results)
	require.Len(t, ranked, 3)
	assert.Equal(t, "c", ranked[0].Result.Scenario)
	assert.Equal(t, "a", ranked[1].Result.Scenario, "ties break by name")
	assert.Equal(t, "b", ranked[2].Result.Scenario)
	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Position, ranked[1].Position, ranked[2].Position})
}

func TestBest(t *testing.T) {
	assert.Nil(t, Best(nil))
	assert.Equal(t, "x", Best([]*simulation.Result{result("y", "", "", 1), result("x", "", "", 2)}).Scenario)
}

func TestSpread(t *testing.T) {
	results := []*simulation.Result{
		result("P (Balanced)", "P", "Balanced", 1.0),
		result("P (Cost)", "P", "Cost", 2.0),
		result("Q (Balanced)", "Q", "Balanced", 3.0),
		result("R", "", "", 0.1),
	}

	spread := Spread(results)
	require.Len(t, spread, 3)

	assert.Equal(t, "Q", spread[0].Base)
	assert.Equal(t, "P", spread[1].Base)
	assert.Equal(t, 2, spread[1].Runs)
	assert.InDelta(t, 1.5, spread[1].Mean, 1e-12)
	assert.InDelta(t, 1.0, spread[1].Range(), 1e-12)
	assert.Equal(t, "Cost", spread[1].BestProfile)

	// Unweighted runs group under their own scenario name.
	assert.Equal(t, "R", spread[2].Base)
	assert.Equal(t, 1, spread[2].Runs)
}
