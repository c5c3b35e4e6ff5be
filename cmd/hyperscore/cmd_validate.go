package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hyperscore/internal/graph"
	"github.com/nvandessel/hyperscore/internal/models"
	"github.com/nvandessel/hyperscore/internal/ranking"
)

// scenarioCheck is the validation report for one scenario.
type scenarioCheck struct {
	Name       string      `json:"name"`
	Source     string      `json:"source,omitempty"`
	Stats      graph.Stats `json:"stats"`
	Unresolved []string    `json:"unresolved_functions,omitempty"`

	// Central lists the nodes with the highest PageRank over all edges.
	Central []ranking.NodeScore `json:"most_central,omitempty"`
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|dir]",
		Short: "Check scenario files without running them",
		Long: `Parse and validate scenario files, build each network and report its
shape. Function identifiers that no registered model resolves are listed;
they are not errors, since such nodes simply start with empty scores.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			scenarios, err := loadScenarios(args, "")
			if err != nil {
				return err
			}

			reg := models.DefaultRegistry()
			checks := make([]scenarioCheck, 0, len(scenarios))
			for _, sc := range scenarios {
				net, err := sc.Build()
				if err != nil {
					return err
				}
				check := scenarioCheck{
					Name:    sc.Name,
					Source:  sc.Source,
					Stats:   net.Stats(),
					Central: ranking.TopNodes(ranking.Centrality(net, ranking.DefaultPageRankConfig()), 3),
				}
				for _, node := range net.Nodes() {
					if node.FunctionPath == "" {
						continue
					}
					if _, ok := reg.Lookup(node.FunctionPath); !ok {
						check.Unresolved = append(check.Unresolved, node.FunctionPath)
					}
				}
				checks = append(checks, check)
			}

			if jsonOut {
				return writeJSON(out, map[string]any{"valid": true, "scenarios": checks})
			}
			for _, c := range checks {
				fmt.Fprintf(out, "✓ %s: %d nodes (%d placeholders), %d functionality edges, %d value edges, %d dependencies\n",
					c.Name, c.Stats.Nodes, c.Stats.Placeholders, c.Stats.FunctionalityEdges, c.Stats.ValueEdges, c.Stats.Dependencies)
				if len(c.Central) > 0 {
					parts := make([]string, len(c.Central))
					for i, ns := range c.Central {
						parts[i] = fmt.Sprintf("%s (%.3f)", ns.NodeID, ns.Score)
					}
					fmt.Fprintf(out, "  most central: %s\n", strings.Join(parts, ", "))
				}
				for _, fp := range c.Unresolved {
					fmt.Fprintf(out, "  warning: no model registered for %q\n", fp)
				}
			}
			return nil
		},
	}
}
