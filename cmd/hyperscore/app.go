package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hyperscore/internal/config"
	"github.com/nvandessel/hyperscore/internal/logging"
	"github.com/nvandessel/hyperscore/internal/models"
	"github.com/nvandessel/hyperscore/internal/observability"
	"github.com/nvandessel/hyperscore/internal/scenario"
	"github.com/nvandessel/hyperscore/internal/store"
	"github.com/nvandessel/hyperscore/internal/study"
)

// app carries the per-invocation state shared by commands: resolved
// settings, loggers and tracing.
type app struct {
	root      string
	jsonOut   bool
	settings  *config.HyperscoreConfig
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	out       io.Writer

	shutdownTracing func(context.Context) error
}

// newApp loads configuration and sets up logging and tracing for cmd.
// Callers must Close the returned app.
func newApp(cmd *cobra.Command) (*app, error) {
	root, _ := cmd.Flags().GetString("root")
	jsonOut, _ := cmd.Flags().GetBool("json")
	cfgPath, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")

	settings, err := config.LoadWithPath(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level != "" {
		settings.Logging.Level = level
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(logging.Options{
		Level:  settings.Logging.Level,
		Format: settings.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
	a := &app{
		root:      root,
		jsonOut:   jsonOut,
		settings:  settings,
		logger:    logger,
		decisions: logging.NewDecisionLogger(filepath.Join(root, ".hyperscore"), settings.Logging.Level),
		out:       cmd.OutOrStdout(),
	}

	a.shutdownTracing, err = observability.InitTracing(cmd.Context(), observability.TracingConfig{
		Enabled:  settings.Tracing.Enabled,
		Exporter: settings.Tracing.Exporter,
		Writer:   cmd.ErrOrStderr(),
	}, logger)
	if err != nil {
		a.decisions.Close()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return a, nil
}

// Close flushes spans and closes the decision log.
func (a *app) Close() {
	observability.ShutdownWithTimeout(context.Background(), a.shutdownTracing, a.logger)
	a.decisions.Close()
}

// runner returns a study runner configured from the app settings.
func (a *app) runner(overrides *scenario.Params) *study.Runner {
	return &study.Runner{
		Registry:    models.DefaultRegistry(),
		Base:        a.settings.SimConfig(),
		Parallelism: a.settings.EffectiveParallelism(),
		Overrides:   overrides,
		Logger:      a.logger,
		Decisions:   a.decisions,
	}
}

// openStore opens the project result database.
func (a *app) openStore() (*store.SQLiteResultStore, error) {
	if !a.settings.Store.Enabled {
		return nil, fmt.Errorf("result store is disabled (set store.enabled in config)")
	}
	rs, err := store.NewSQLiteResultStore(a.settings.StorePath(a.root))
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}
	return rs, nil
}

// loadScenarios loads scenarios from a file or directory. No path selects the
// built-in sandwich panel; a non-empty name keeps only that scenario.
func loadScenarios(args []string, name string) ([]scenario.Scenario, error) {
	var scenarios []scenario.Scenario
	if len(args) == 0 {
		scenarios = []scenario.Scenario{scenario.SandwichPanel()}
	} else {
		loaded, err := scenario.Load(args[0])
		if err != nil {
			return nil, err
		}
		scenarios = loaded
	}
	if name == "" {
		return scenarios, nil
	}
	for _, sc := range scenarios {
		if sc.Name == name {
			return []scenario.Scenario{sc}, nil
		}
	}
	return nil, fmt.Errorf("scenario %q not found", name)
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
