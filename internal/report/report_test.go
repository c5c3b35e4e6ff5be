package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/hyperscore/internal/models"
	"github.com/nvandessel/hyperscore/internal/ranking"
	"github.com/nvandessel/hyperscore/internal/scenario"
	"github.com/nvandessel/hyperscore/internal/simulation"
	"github.com/nvandessel/hyperscore/internal/store"
)

func runSandwich(t *testing.T) *simulation.Result {
	t.Helper()
	sc := scenario.SandwichPanel()
	net, err := sc.Build()
	require.NoError(t, err)
	res, err := simulation.NewEngine(net, models.DefaultRegistry()).Run(context.Background(), sc.Name, sc.SimConfig(simulation.DefaultConfig()))
	require.NoError(t, err)
	return res
}

func TestWriteSummary_SingleRun(t *testing.T) {
	res := runSandwich(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, []*simulation.Result{res}))
	out := buf.String()

	assert.Contains(t, out, "Scenario: "+res.Scenario)
	assert.Contains(t, out, "iterations=10 alpha=0.50 beta=0.50")
	for _, id := range res.NodeIDs() {
		assert.Contains(t, out, id)
	}
	assert.NotContains(t, out, "Best design", "a single run gets no banner")
	assert.NotContains(t, out, "\x1b[", "non-terminal output must not be colored")
}

func TestWriteSummary_BestBanner(t *testing.T) {
	results := []*simulation.Result{
		{Scenario: "low", MetaScore: 0.2},
		nil,
		{Scenario: "high", MetaScore: 0.9},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, results))
	assert.Contains(t, buf.String(), "Best design: high (meta-score 0.9000)")
}

func TestWriteSummary_Unresolved(t *testing.T) {
	res := &simulation.Result{
		Scenario:   "broken",
		Nodes:      map[string]simulation.NodeState{"A": {Domain: "Design", Type: "Creation"}},
		Unresolved: []simulation.Unresolved{{NodeID: "A", FunctionPath: "no.such.model"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, []*simulation.Result{res}))
	assert.Contains(t, buf.String(), `unresolved scorer "no.such.model" on node A`)
}

func TestWriteSummary_DomainMeans(t *testing.T) {
	res := &simulation.Result{
		Scenario: "mixed",
		Nodes: map[string]simulation.NodeState{
			"A": {Domain: "Design", Functionality: map[string]float64{"performance": 0.2}},
			"B": {Domain: "Design", Functionality: map[string]float64{"performance": 0.6}},
			"C": {Domain: "Material", Value: map[string]float64{"total_cost": 0.5}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, []*simulation.Result{res}))
	out := buf.String()
	assert.Contains(t, out, "Mean scores")
	assert.Contains(t, out, "performance=0.400")

	single := &simulation.Result{
		Scenario: "one-domain",
		Nodes:    map[string]simulation.NodeState{"A": {Domain: "Design"}},
	}
	buf.Reset()
	require.NoError(t, WriteSummary(&buf, []*simulation.Result{single}))
	assert.NotContains(t, buf.String(), "Mean scores")
}

func TestWriteComparison(t *testing.T) {
	results := []*simulation.Result{
		{Scenario: "panel (Balanced)", Base: "panel", Profile: "Balanced", MetaScore: 0.5},
		{Scenario: "panel (Cost-Focused)", Base: "panel", Profile: "Cost-Focused", MetaScore: 0.7},
		{Scenario: "beam", MetaScore: 0.6},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, ranking.Rank(results)))
	out := buf.String()

	assert.Contains(t, out, "Design comparison")
	assert.Contains(t, out, "Sensitivity to weighting")
	assert.Contains(t, out, "Cost-Focused")
	assert.Contains(t, out, "0.7000")
	// panel ranks first, so it appears before beam in the ranking table.
	assert.Less(t, strings.Index(out, "panel"), strings.Index(out, "beam"))
}

func TestFormatScores(t *testing.T) {
	assert.Equal(t, "-", formatScores(nil))
	assert.Equal(t, "a=0.100\nb=0.250", formatScores(map[string]float64{"b": 0.25, "a": 0.1}))
}

func TestFormatAttributes(t *testing.T) {
	assert.Equal(t, "-", formatAttributes(nil))
	assert.Equal(t, "density=1.6\nname=CFRP", formatAttributes(map[string]any{"name": "CFRP", "density": 1.6}))
}

func TestWriteRunList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRunList(&buf, nil))
	assert.Equal(t, "No stored runs.\n", buf.String())

	buf.Reset()
	sums := []store.Summary{
		{RunID: "run-2", Scenario: "panel (Cost-Focused)", Profile: "Cost-Focused", MetaScore: 0.71, Iterations: 10, StartedAt: time.Now()},
		{RunID: "run-1", Scenario: "panel", MetaScore: 0.5, Iterations: 5, StartedAt: time.Now().Add(-time.Hour)},
	}
	require.NoError(t, WriteRunList(&buf, sums))
	out := buf.String()
	assert.Contains(t, out, "run-2")
	assert.Contains(t, out, "0.7100")
	assert.Less(t, strings.Index(out, "run-2"), strings.Index(out, "run-1"), "input order is kept")
}

func TestWriteScoreHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScoreHistory(&buf, "design_prediction", "performance", nil))
	assert.Contains(t, buf.String(), "No stored scores for design_prediction.performance")

	buf.Reset()
	points := []store.ScorePoint{
		{RunID: "run-1", Scenario: "panel", Family: "functionality", Score: 0.25, StartedAt: time.Now()},
	}
	require.NoError(t, WriteScoreHistory(&buf, "design_prediction", "performance", points))
	assert.Contains(t, buf.String(), "design_prediction.performance across runs")
	assert.Contains(t, buf.String(), "0.2500")
}
