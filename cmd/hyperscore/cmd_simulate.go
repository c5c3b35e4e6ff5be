package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hyperscore/internal/ranking"
	"github.com/nvandessel/hyperscore/internal/report"
	"github.com/nvandessel/hyperscore/internal/scenario"
	"github.com/nvandessel/hyperscore/internal/simulation"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [file|dir]",
		Short: "Run scenarios and print their scores",
		Long: `Run every scenario in a YAML, JSON or HCL file (or a directory of them).

Each run scores nodes with their model functions, propagates scores for the
configured number of rounds and reduces the final state to a meta-score.
Without a path the built-in sandwich panel scenario is run.

Examples:
  hyperscore simulate                          # Built-in sandwich panel
  hyperscore simulate designs/panels.yaml      # Every scenario in the file
  hyperscore simulate panels.hcl --iterations 20 --profile Cost-Focused --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			profile, _ := cmd.Flags().GetString("profile")
			save, _ := cmd.Flags().GetBool("save")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			scenarios, err := loadScenarios(args, name)
			if err != nil {
				return err
			}

			runner := a.runner(paramOverrides(cmd))
			results := make([]*simulation.Result, 0, len(scenarios))
			for _, sc := range scenarios {
				res, err := runner.RunScenario(cmd.Context(), sc, profile)
				if err != nil {
					return err
				}
				results = append(results, res)
			}

			if save {
				if err := saveResults(cmd, a, results); err != nil {
					return err
				}
			}

			if a.jsonOut {
				out := map[string]any{"results": results}
				if best := ranking.Best(results); best != nil {
					out["best_run_id"] = best.RunID
				}
				return writeJSON(a.out, out)
			}

			if err := report.WriteSummary(a.out, results); err != nil {
				return err
			}
			if len(results) > 1 {
				return report.WriteComparison(a.out, ranking.Rank(results))
			}
			return nil
		},
	}

	cmd.Flags().String("name", "", "Run only the scenario with this name")
	cmd.Flags().String("profile", "", "Apply a weighting profile (e.g. Performance-Focused)")
	cmd.Flags().Bool("save", false, "Store results in the project result database")
	addParamFlags(cmd)

	return cmd
}

// addParamFlags registers the run parameter overrides.
func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().Int("iterations", 0, "Propagation rounds (overrides config and scenario)")
	cmd.Flags().Float64("alpha", 0, "Functionality damping factor in [0,1]")
	cmd.Flags().Float64("beta", 0, "Value damping factor in [0,1]")
}

// paramOverrides returns the run parameters the user set explicitly.
func paramOverrides(cmd *cobra.Command) *scenario.Params {
	p := &scenario.Params{}
	if cmd.Flags().Changed("iterations") {
		v, _ := cmd.Flags().GetInt("iterations")
		p.Iterations = &v
	}
	if cmd.Flags().Changed("alpha") {
		v, _ := cmd.Flags().GetFloat64("alpha")
		p.Alpha = &v
	}
	if cmd.Flags().Changed("beta") {
		v, _ := cmd.Flags().GetFloat64("beta")
		p.Beta = &v
	}
	return p
}

func saveResults(cmd *cobra.Command, a *app, results []*simulation.Result) error {
	rs, err := a.openStore()
	if err != nil {
		return err
	}
	defer rs.Close()

	for _, res := range results {
		if err := rs.Save(cmd.Context(), res); err != nil {
			return fmt.Errorf("save run %s: %w", res.RunID, err)
		}
		a.logger.Info("saved run", "run_id", res.RunID, "scenario", res.Scenario, "path", rs.Path())
	}
	return nil
}
