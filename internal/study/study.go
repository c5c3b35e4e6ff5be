// Package study runs weighting studies: every scenario under every weighting
// profile, each variant on its own network and engine.
package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/hyperscore/internal/logging"
	"github.com/nvandessel/hyperscore/internal/metrics"
	"github.com/nvandessel/hyperscore/internal/models"
	"github.com/nvandessel/hyperscore/internal/scenario"
	"github.com/nvandessel/hyperscore/internal/simulation"
)

// ErrUnknownProfile is returned when a named weighting profile does not exist.
var ErrUnknownProfile = errors.New("unknown weighting profile")

// Job is one planned run: a scenario under one weighting profile.
type Job struct {
	Name     string
	Scenario scenario.Scenario
	Profile  scenario.WeightProfile
	Config   simulation.Config
}

// Runner executes jobs concurrently.
type Runner struct {
	// Registry resolves model functions. Shared read-only across runs.
	Registry *models.Registry

	// Base is the configuration scenario overrides are merged onto.
	Base simulation.Config

	// Parallelism bounds concurrent runs. Zero or less means GOMAXPROCS.
	Parallelism int

	// Profiles, when non-nil, replaces each scenario's own profile list.
	Profiles []scenario.WeightProfile

	// Overrides are applied after scenario file settings, so command-line
	// parameters win over both the base config and the file.
	Overrides *scenario.Params

	Logger    *slog.Logger
	Decisions *logging.DecisionLogger
	Metrics   *metrics.Registry
}

// Plan expands scenarios into jobs in a deterministic order: scenarios in
// input order, profiles in declaration order within each scenario.
func (r *Runner) Plan(scenarios []scenario.Scenario) []Job {
	var jobs []Job
	for _, s := range scenarios {
		profiles := r.Profiles
		if profiles == nil {
			profiles = s.EffectiveProfiles()
		}
		cfg := r.Overrides.Apply(s.SimConfig(r.Base))
		for _, p := range profiles {
			jobCfg := cfg
			jobCfg.MetaWeights = p.Apply(cfg.MetaWeights)
			jobs = append(jobs, Job{
				Name:     p.VariantName(s.Name),
				Scenario: s,
				Profile:  p,
				Config:   jobCfg,
			})
		}
	}
	return jobs
}

// Run executes every planned job and returns the results in plan order.
// The first failing job cancels the rest.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) ([]*simulation.Result, error) {
	jobs := r.Plan(scenarios)
	results := make([]*simulation.Result, len(jobs))

	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	limit := r.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	logger.Debug("study starting", "scenarios", len(scenarios), "jobs", len(jobs), "parallelism", limit)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := r.runJob(gctx, job, logger)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("study finished", "runs", len(results))
	return results, nil
}

// RunScenario runs sc once outside a study. An empty profile runs the
// scenario's own weighting; otherwise the named profile is looked up among
// the scenario's effective profiles and applied.
func (r *Runner) RunScenario(ctx context.Context, sc scenario.Scenario, profile string) (*simulation.Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	cfg := r.Overrides.Apply(sc.SimConfig(r.Base))

	if profile == "" {
		return r.runJob(ctx, Job{Name: sc.Name, Scenario: sc, Config: cfg}, logger)
	}
	p, ok := scenario.FindProfile(sc.EffectiveProfiles(), profile)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	cfg.MetaWeights = p.Apply(cfg.MetaWeights)
	return r.runJob(ctx, Job{Name: p.VariantName(sc.Name), Scenario: sc, Profile: p, Config: cfg}, logger)
}

func (r *Runner) runJob(ctx context.Context, job Job, logger *slog.Logger) (*simulation.Result, error) {
	net, err := job.Scenario.Build()
	if err != nil {
		return nil, err
	}
	eng := simulation.NewEngine(net, r.Registry,
		simulation.WithLogger(logger.With("profile", job.Profile.Name)),
		simulation.WithDecisionLogger(r.Decisions),
		simulation.WithMetrics(r.Metrics),
	)
	res, err := eng.Run(ctx, job.Name, job.Config)
	if err != nil {
		return nil, err
	}
	if job.Profile.Name != "" {
		res.Base = job.Scenario.Name
		res.Profile = job.Profile.Name
	}
	return res, nil
}
