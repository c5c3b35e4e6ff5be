package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/hyperscore/internal/pathutil"
	"github.com/nvandessel/hyperscore/internal/ranking"
	"github.com/nvandessel/hyperscore/internal/ratelimit"
	"github.com/nvandessel/hyperscore/internal/sanitize"
	"github.com/nvandessel/hyperscore/internal/scenario"
	"github.com/nvandessel/hyperscore/internal/simulation"
	"github.com/nvandessel/hyperscore/internal/store"
	"github.com/nvandessel/hyperscore/internal/study"
	"github.com/nvandessel/hyperscore/internal/visualization"
)

const (
	toolSimulate = "hyperscore_simulate"
	toolGraph    = "hyperscore_graph"
	toolResults  = "hyperscore_results"

	builtinScenarioURI = "hyperscore://scenarios/sandwich-panel"
	defaultResultLimit = 20
)

// ErrScenarioNotFound is returned when a named scenario is not in the file.
var ErrScenarioNotFound = errors.New("scenario not found")

// registerTools registers all hyperscore MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolSimulate,
		Description: "Run a design scenario: initial model scoring, score propagation over the hypergraph and the weighted meta-score",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolGraph,
		Description: "Render a scenario's design hypergraph in DOT (Graphviz) or JSON, optionally annotated with a stored run's final scores",
	}, s.handleGraph)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolResults,
		Description: "List stored simulation runs, newest first",
	}, s.handleResults)
}

// registerResources exposes the built-in scenario so clients can use it as a template.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         builtinScenarioURI,
		Name:        "hyperscore-sandwich-panel",
		Description: "Built-in CFRP-honeycomb sandwich panel scenario in YAML. Copy it as a starting point for new designs.",
		MIMEType:    "application/yaml",
	}, s.handleBuiltinScenario)
}

func (s *Server) handleBuiltinScenario(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      builtinScenarioURI,
				MIMEType: "application/yaml",
				Text:     string(scenario.SandwichPanelYAML()),
			},
		},
	}, nil
}

// loadScenario resolves a scenario argument. An empty path selects the
// built-in scenario; other paths must stay inside the project root or the
// user scenario library.
func (s *Server) loadScenario(path, name string) (scenario.Scenario, error) {
	if path == "" {
		return scenario.SandwichPanel(), nil
	}

	userDir, err := pathutil.UserScenarioDir()
	if err != nil {
		return scenario.Scenario{}, err
	}
	abs, err := pathutil.ResolveWithin(s.root, path, userDir)
	if err != nil {
		return scenario.Scenario{}, fmt.Errorf("scenario path rejected: %w", err)
	}

	scenarios, err := scenario.LoadFile(abs)
	if err != nil {
		return scenario.Scenario{}, err
	}
	if name == "" {
		return scenarios[0], nil
	}
	for _, sc := range scenarios {
		if sc.Name == name {
			return sc, nil
		}
	}
	return scenario.Scenario{}, fmt.Errorf("%w: %q in %s", ErrScenarioNotFound, name, pathutil.RedactPath(abs))
}

func (s *Server) runner(overrides *scenario.Params) *study.Runner {
	return &study.Runner{
		Registry:  s.registry,
		Base:      s.settings.SimConfig(),
		Overrides: overrides,
		Logger:    s.logger,
		Decisions: s.decisions,
		Metrics:   s.metrics,
	}
}

// handleSimulate implements the hyperscore_simulate tool.
func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (_ *sdk.CallToolResult, _ SimulateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(toolSimulate, start, retErr, sanitizeToolParams(map[string]any{
			"scenario":   nonEmpty(args.Scenario),
			"name":       nonEmpty(args.Name),
			"profile":    nonEmpty(args.Profile),
			"iterations": deref(args.Iterations),
			"alpha":      deref(args.Alpha),
			"beta":       deref(args.Beta),
			"save":       args.Save,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, toolSimulate); err != nil {
		return nil, SimulateOutput{}, err
	}

	sc, err := s.loadScenario(args.Scenario, args.Name)
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	overrides := &scenario.Params{Iterations: args.Iterations, Alpha: args.Alpha, Beta: args.Beta}
	res, err := s.runner(overrides).RunScenario(ctx, sc, args.Profile)
	if err != nil {
		return nil, SimulateOutput{}, fmt.Errorf("simulation failed: %w", err)
	}

	out := SimulateOutput{
		RunID:         res.RunID,
		Scenario:      sanitize.Text(res.Scenario),
		MetaScore:     res.MetaScore,
		Iterations:    res.Config.Iterations,
		NodeCount:     len(res.Nodes),
		Scores:        make(map[string]NodeScores, len(res.Nodes)),
		Contributions: res.Contributions,
	}
	for _, u := range res.Unresolved {
		out.Unresolved = append(out.Unresolved, simulation.Unresolved{
			NodeID:       sanitize.Identifier(u.NodeID),
			FunctionPath: sanitize.Identifier(u.FunctionPath),
		})
	}
	for id, state := range res.Nodes {
		out.Scores[id] = NodeScores{Functionality: state.Functionality, Value: state.Value}
	}

	if args.Save {
		if err := s.store.Save(ctx, res); err != nil {
			return nil, SimulateOutput{}, fmt.Errorf("save result: %w", err)
		}
		out.Saved = true
	}

	out.Message = fmt.Sprintf("%s: meta-score %.4f after %d rounds over %d nodes", out.Scenario, res.MetaScore, res.Config.Iterations, len(res.Nodes))
	if n := len(res.Unresolved); n > 0 {
		out.Message += fmt.Sprintf(" (%d unresolved model functions)", n)
	}
	return nil, out, nil
}

// handleGraph implements the hyperscore_graph tool.
func (s *Server) handleGraph(ctx context.Context, req *sdk.CallToolRequest, args GraphInput) (_ *sdk.CallToolResult, _ GraphOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(toolGraph, start, retErr, sanitizeToolParams(map[string]any{
			"scenario": nonEmpty(args.Scenario),
			"name":     nonEmpty(args.Name),
			"format":   nonEmpty(args.Format),
			"run_id":   nonEmpty(args.RunID),
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, toolGraph); err != nil {
		return nil, GraphOutput{}, err
	}

	format := visualization.FormatJSON
	if args.Format != "" {
		f, err := visualization.ParseFormat(args.Format)
		if err != nil {
			return nil, GraphOutput{}, err
		}
		format = f
	}

	sc, err := s.loadScenario(args.Scenario, args.Name)
	if err != nil {
		return nil, GraphOutput{}, err
	}
	net, err := sc.Build()
	if err != nil {
		return nil, GraphOutput{}, err
	}

	var res *simulation.Result
	if args.RunID != "" {
		res, err = s.store.Get(ctx, args.RunID)
		if err != nil {
			return nil, GraphOutput{}, fmt.Errorf("load run: %w", err)
		}
	}

	stats := net.Stats()
	out := GraphOutput{
		Format:         string(format),
		NodeCount:      stats.Nodes,
		EdgeCount:      stats.ValueEdges + stats.FunctionalityEdges,
		HyperedgeCount: stats.Dependencies,
	}
	switch format {
	case visualization.FormatDOT:
		out.Graph = visualization.RenderDOT(net, res)
	default:
		enrichment := &visualization.EnrichmentData{
			Centrality: ranking.Centrality(net, ranking.DefaultPageRankConfig()),
		}
		out.Graph = visualization.RenderJSON(net, res, enrichment)
	}
	return nil, out, nil
}

// handleResults implements the hyperscore_results tool.
func (s *Server) handleResults(ctx context.Context, req *sdk.CallToolRequest, args ResultsInput) (_ *sdk.CallToolResult, _ ResultsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(toolResults, start, retErr, sanitizeToolParams(map[string]any{
			"scenario": nonEmpty(args.Scenario),
			"profile":  nonEmpty(args.Profile),
			"limit":    args.Limit,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, toolResults); err != nil {
		return nil, ResultsOutput{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultResultLimit
	}
	sums, err := s.store.List(ctx, store.Filter{Scenario: args.Scenario, Profile: args.Profile, Limit: limit})
	if err != nil {
		return nil, ResultsOutput{}, fmt.Errorf("list results: %w", err)
	}

	out := ResultsOutput{Runs: make([]RunSummary, 0, len(sums))}
	for _, sum := range sums {
		out.Runs = append(out.Runs, runSummary(sum))
	}
	out.Count = len(out.Runs)
	return nil, out, nil
}

// nonEmpty maps "" to nil so unset string params are not audited.
func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
