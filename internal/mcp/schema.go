package mcp

import (
	"time"

	"github.com/nvandessel/hyperscore/internal/sanitize"
	"github.com/nvandessel/hyperscore/internal/simulation"
	"github.com/nvandessel/hyperscore/internal/store"
)

// SimulateInput defines the input for the hyperscore_simulate tool.
type SimulateInput struct {
	Scenario   string   `json:"scenario,omitempty" jsonschema:"Scenario file path relative to the project root. Empty runs the built-in sandwich panel"`
	Name       string   `json:"name,omitempty" jsonschema:"Scenario name when the file holds several (default: the first)"`
	Profile    string   `json:"profile,omitempty" jsonschema:"Weighting profile to apply, e.g. Cost-Focused"`
	Iterations *int     `json:"iterations,omitempty" jsonschema:"Number of propagation rounds"`
	Alpha      *float64 `json:"alpha,omitempty" jsonschema:"Functionality damping factor in [0,1]"`
	Beta       *float64 `json:"beta,omitempty" jsonschema:"Value damping factor in [0,1]"`
	Save       bool     `json:"save,omitempty" jsonschema:"Persist the result to the project result store"`
}

// SimulateOutput defines the output for the hyperscore_simulate tool.
type SimulateOutput struct {
	RunID         string                    `json:"run_id" jsonschema:"Identifier of the run"`
	Scenario      string                    `json:"scenario_name" jsonschema:"Name of the simulated scenario variant"`
	MetaScore     float64                   `json:"meta_score" jsonschema:"Final weighted meta-score"`
	Iterations    int                       `json:"iterations" jsonschema:"Propagation rounds executed"`
	NodeCount     int                       `json:"node_count" jsonschema:"Number of nodes in the network"`
	Scores        map[string]NodeScores     `json:"scores" jsonschema:"Final scores per node"`
	Contributions []simulation.Contribution `json:"contributions" jsonschema:"Weighted terms of the meta-score"`
	Unresolved    []simulation.Unresolved   `json:"unresolved,omitempty" jsonschema:"Nodes whose model function was not registered"`
	Saved         bool                      `json:"saved" jsonschema:"Whether the result was stored"`
	Message       string                    `json:"message" jsonschema:"Human-readable summary"`
}

// NodeScores is the final score view of one node.
type NodeScores struct {
	Functionality map[string]float64 `json:"functionality"`
	Value         map[string]float64 `json:"value"`
}

// GraphInput defines the input for the hyperscore_graph tool.
type GraphInput struct {
	Scenario string `json:"scenario,omitempty" jsonschema:"Scenario file path relative to the project root. Empty uses the built-in sandwich panel"`
	Name     string `json:"name,omitempty" jsonschema:"Scenario name when the file holds several"`
	Format   string `json:"format,omitempty" jsonschema:"Output format: dot or json (default: json)"`
	RunID    string `json:"run_id,omitempty" jsonschema:"Stored run whose final scores annotate the graph"`
}

// GraphOutput defines the output for the hyperscore_graph tool.
type GraphOutput struct {
	Format         string `json:"format" jsonschema:"Output format used"`
	Graph          any    `json:"graph" jsonschema:"Rendered graph: DOT text or a JSON object"`
	NodeCount      int    `json:"node_count" jsonschema:"Number of nodes"`
	EdgeCount      int    `json:"edge_count" jsonschema:"Number of weighted edges"`
	HyperedgeCount int    `json:"hyperedge_count" jsonschema:"Number of dependency hyperedges"`
}

// ResultsInput defines the input for the hyperscore_results tool.
type ResultsInput struct {
	Scenario string `json:"scenario,omitempty" jsonschema:"Only runs of this scenario or base scenario"`
	Profile  string `json:"profile,omitempty" jsonschema:"Only runs under this weighting profile"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of runs (default: 20)"`
}

// ResultsOutput defines the output for the hyperscore_results tool.
type ResultsOutput struct {
	Runs  []RunSummary `json:"runs" jsonschema:"Stored runs, newest first"`
	Count int          `json:"count" jsonschema:"Number of runs returned"`
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	RunID      string  `json:"run_id"`
	Scenario   string  `json:"scenario_name"`
	Base       string  `json:"base_scenario,omitempty"`
	Profile    string  `json:"profile,omitempty"`
	MetaScore  float64 `json:"meta_score"`
	Iterations int     `json:"iterations"`
	Nodes      int     `json:"nodes"`
	StartedAt  string  `json:"started_at" jsonschema:"RFC 3339 start time"`
	DurationMs int64   `json:"duration_ms"`
}

func runSummary(s store.Summary) RunSummary {
	return RunSummary{
		RunID:      s.RunID,
		Scenario:   sanitize.Text(s.Scenario),
		Base:       sanitize.Text(s.Base),
		Profile:    sanitize.Text(s.Profile),
		MetaScore:  s.MetaScore,
		Iterations: s.Iterations,
		Nodes:      s.Nodes,
		StartedAt:  s.StartedAt.UTC().Format(time.RFC3339),
		DurationMs: s.Duration.Milliseconds(),
	}
}
