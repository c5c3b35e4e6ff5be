package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hyperscore/internal/ranking"
	"github.com/nvandessel/hyperscore/internal/report"
	"github.com/nvandessel/hyperscore/internal/scenario"
	"github.com/nvandessel/hyperscore/internal/store"
)

func newStudyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study [file|dir]",
		Short: "Run every scenario under every weighting profile and compare",
		Long: `Run a weighting study: each scenario is simulated once per weighting
profile, concurrently, and the results are ranked. The spread of meta-scores
across profiles shows how sensitive each design is to the weighting choice.

Scenarios without their own profiles use the stock set: Balanced,
Performance-Focused, Cost-Focused and Sustainability-Focused.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parallel, _ := cmd.Flags().GetInt("parallel")
			save, _ := cmd.Flags().GetBool("save")
			profileNames, _ := cmd.Flags().GetStringSlice("profiles")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			scenarios, err := loadScenarios(args, "")
			if err != nil {
				return err
			}

			runner := a.runner(paramOverrides(cmd))
			if parallel > 0 {
				runner.Parallelism = parallel
			}
			if len(profileNames) > 0 {
				profiles, err := selectProfiles(profileNames)
				if err != nil {
					return err
				}
				runner.Profiles = profiles
			}

			results, err := runner.Run(cmd.Context(), scenarios)
			if err != nil {
				return err
			}

			if save {
				if err := saveResults(cmd, a, results); err != nil {
					return err
				}
			}

			ranked := ranking.Rank(results)
			if a.jsonOut {
				runs := make([]store.Summary, 0, len(ranked))
				for _, r := range ranked {
					runs = append(runs, store.Summarize(r.Result))
				}
				return writeJSON(a.out, map[string]any{
					"runs":   runs,
					"spread": ranking.Spread(results),
				})
			}
			return report.WriteComparison(a.out, ranked)
		},
	}

	cmd.Flags().Int("parallel", 0, "Concurrent runs (default: study.parallelism or GOMAXPROCS)")
	cmd.Flags().Bool("save", false, "Store results in the project result database")
	cmd.Flags().StringSlice("profiles", nil, "Restrict to these stock profiles (comma-separated)")
	addParamFlags(cmd)

	return cmd
}

// selectProfiles resolves stock profile names.
func selectProfiles(names []string) ([]scenario.WeightProfile, error) {
	stock := scenario.DefaultProfiles()
	profiles := make([]scenario.WeightProfile, 0, len(names))
	for _, name := range names {
		p, ok := scenario.FindProfile(stock, strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown profile %q", name)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
