package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nvandessel/hyperscore/internal/graph"
	"github.com/nvandessel/hyperscore/internal/logging"
	"github.com/nvandessel/hyperscore/internal/metrics"
	"github.com/nvandessel/hyperscore/internal/models"
	"github.com/nvandessel/hyperscore/internal/observability"
)

// Engine runs simulations against one network. A network must be owned by a
// single engine for the duration of a run; independent scenarios each get
// their own network and engine.
type Engine struct {
	network   *graph.Network
	registry  *models.Registry
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	metrics   *metrics.Registry
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDecisionLogger records scoring decisions to a JSONL trace.
func WithDecisionLogger(dl *logging.DecisionLogger) Option {
	return func(e *Engine) { e.decisions = dl }
}

// WithMetrics records run metrics into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// NewEngine creates an engine for net using reg to resolve model functions.
func NewEngine(net *graph.Network, reg *models.Registry, opts ...Option) *Engine {
	e := &Engine{
		network:  net,
		registry: reg,
		logger:   logging.Discard(),
		tracer:   observability.Tracer(),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Network returns the engine's network.
func (e *Engine) Network() *graph.Network {
	return e.network
}

// Run executes initial scoring, cfg.Iterations propagation rounds and the
// meta-score reduction, then returns a detached snapshot. The context is only
// consulted between rounds so a caller can abandon a run.
func (e *Engine) Run(ctx context.Context, scenario string, cfg Config) (_ *Result, retErr error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	start := e.now()
	rounds := 0
	meta := 0.0
	ctx, span := e.tracer.Start(ctx, "simulation.run", trace.WithAttributes(
		attribute.String("scenario", scenario),
		attribute.Int("iterations", cfg.Iterations),
		attribute.Float64("alpha", cfg.Alpha),
		attribute.Float64("beta", cfg.Beta),
		attribute.Int("nodes", e.network.Len()),
	))
	defer func() {
		status := metrics.StatusOK
		if retErr != nil {
			status = metrics.StatusError
			if ctx.Err() != nil {
				status = metrics.StatusCancelled
			}
			span.RecordError(retErr)
			span.SetStatus(codes.Error, retErr.Error())
		}
		e.metrics.RecordRun(status, e.now().Sub(start), rounds, e.network.Len(), meta)
		span.End()
	}()

	log := e.logger.With("scenario", scenario)
	log.Debug("simulation starting", "nodes", e.network.Len(), "iterations", cfg.Iterations)

	for _, id := range e.network.Placeholders() {
		e.decisions.PlaceholderNode(scenario, id)
	}

	unresolved := e.scoreInitial(ctx, scenario, log)

	_, propSpan := e.tracer.Start(ctx, "simulation.propagate")
	for rounds < cfg.Iterations {
		if err := ctx.Err(); err != nil {
			propSpan.End()
			return nil, fmt.Errorf("simulation cancelled after %d rounds: %w", rounds, err)
		}
		stats := Propagate(e.network, cfg.Alpha, cfg.Beta)
		rounds++
		log.Log(ctx, logging.LevelTrace, "propagation round",
			"round", rounds, "updated", stats.Updated, "max_delta", stats.MaxDelta)
	}
	propSpan.SetAttributes(attribute.Int("rounds", rounds))
	propSpan.End()

	_, metaSpan := e.tracer.Start(ctx, "simulation.meta_score")
	states := Snapshot(e.network)
	meta, contributions := metaScore(states, cfg.MetaWeights)
	metaSpan.SetAttributes(attribute.Float64("meta_score", meta))
	metaSpan.End()

	for _, c := range contributions {
		log.Debug("meta-score term", "node_id", c.NodeID, "label", c.Label,
			"score", c.Score, "weight", c.Weight, "found", c.Found)
	}

	result := &Result{
		RunID:         e.newID(),
		Scenario:      scenario,
		MetaScore:     meta,
		Config:        Config{Iterations: cfg.Iterations, Alpha: cfg.Alpha, Beta: cfg.Beta, MetaWeights: cfg.MetaWeights.Clone()},
		Nodes:         states,
		Unresolved:    unresolved,
		Contributions: contributions,
		StartedAt:     start,
		Duration:      e.now().Sub(start),
	}

	e.decisions.RunComplete(scenario, result.RunID, meta, rounds)
	log.Info("simulation finished", "meta_score", meta, "rounds", rounds, "unresolved", len(unresolved))
	return result, nil
}

// scoreInitial applies each node's scorer once. Nodes without an identifier,
// or with one the registry does not know, keep empty scores.
func (e *Engine) scoreInitial(ctx context.Context, scenario string, log *slog.Logger) []Unresolved {
	_, span := e.tracer.Start(ctx, "simulation.initial_scoring")
	defer span.End()

	var unresolved []Unresolved
	applied := 0
	for _, node := range e.network.Nodes() {
		if node.FunctionPath == "" {
			continue
		}
		scorer, ok := e.registry.Lookup(node.FunctionPath)
		if !ok {
			log.Warn("model function not registered; node keeps zero scores",
				"node_id", node.ID, "function_path", node.FunctionPath)
			e.decisions.ScorerSkipped(scenario, node.ID, node.FunctionPath)
			e.metrics.RecordUnresolved(node.FunctionPath)
			unresolved = append(unresolved, Unresolved{NodeID: node.ID, FunctionPath: node.FunctionPath})
			continue
		}
		scorer.Apply(node)
		applied++
		e.decisions.ScorerApplied(scenario, node.ID, node.FunctionPath, node.Functionality.Map(), node.Value.Map())
	}

	span.SetAttributes(attribute.Int("applied", applied), attribute.Int("unresolved", len(unresolved)))
	log.Debug("initial scoring complete", "applied", applied, "unresolved", len(unresolved))
	return unresolved
}
