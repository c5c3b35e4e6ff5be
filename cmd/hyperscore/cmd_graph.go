package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hyperscore/internal/graph"
	"github.com/nvandessel/hyperscore/internal/ranking"
	"github.com/nvandessel/hyperscore/internal/simulation"
	"github.com/nvandessel/hyperscore/internal/visualization"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [file]",
		Short: "Visualize a scenario's design hypergraph",
		Long: `Output a scenario's hypergraph in DOT (Graphviz) or JSON format.

Nodes are colored by domain, dependency hyperedges are drawn through a
junction point, value edges are dashed and functionality edges solid. With
--run the final scores of a stored run annotate the nodes.

Examples:
  hyperscore graph | dot -Tsvg > panel.svg
  hyperscore graph designs/panels.yaml --name "Baseline" --format json
  hyperscore graph --serve`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			name, _ := cmd.Flags().GetString("name")
			runID, _ := cmd.Flags().GetString("run")
			serve, _ := cmd.Flags().GetBool("serve")
			addr, _ := cmd.Flags().GetString("addr")
			noOpen, _ := cmd.Flags().GetBool("no-open")

			format, err := visualization.ParseFormat(formatName)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			scenarios, err := loadScenarios(args, name)
			if err != nil {
				return err
			}
			net, err := scenarios[0].Build()
			if err != nil {
				return err
			}

			var res *simulation.Result
			if runID != "" {
				rs, err := a.openStore()
				if err != nil {
					return err
				}
				res, err = rs.Get(cmd.Context(), runID)
				rs.Close()
				if err != nil {
					return fmt.Errorf("load run: %w", err)
				}
			}

			enrichment := &visualization.EnrichmentData{
				Centrality: ranking.Centrality(net, ranking.DefaultPageRankConfig()),
			}

			if serve {
				return runGraphServer(cmd, net, res, enrichment, addr, noOpen)
			}

			switch format {
			case visualization.FormatDOT:
				fmt.Fprint(a.out, visualization.RenderDOT(net, res))
				return nil
			default:
				return writeJSON(a.out, visualization.RenderJSON(net, res, enrichment))
			}
		},
	}

	cmd.Flags().String("format", "dot", "Output format: dot or json")
	cmd.Flags().String("name", "", "Scenario name when the file holds several (default: first)")
	cmd.Flags().String("run", "", "Annotate with the final scores of this stored run")
	cmd.Flags().Bool("serve", false, "Serve the graph over HTTP instead of printing it")
	cmd.Flags().String("addr", "", "Listen address for --serve (default: a free localhost port)")
	cmd.Flags().Bool("no-open", false, "Don't open a browser with --serve")

	return cmd
}

// runGraphServer serves the graph and blocks until Ctrl-C.
func runGraphServer(cmd *cobra.Command, net *graph.Network, res *simulation.Result, enrichment *visualization.EnrichmentData, addr string, noOpen bool) error {
	srv := visualization.NewServer(net, res, enrichment)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx, addr) }()

	deadline := time.Now().Add(3 * time.Second)
	for srv.Addr() == "" && time.Now().Before(deadline) {
		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case <-time.After(10 * time.Millisecond):
		}
	}
	if srv.Addr() == "" {
		return fmt.Errorf("server failed to start")
	}

	url := "http://" + srv.Addr()
	fmt.Fprintf(cmd.OutOrStdout(), "Graph server running at %s\n", url)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl-C to stop.\n")

	if !noOpen {
		if err := visualization.OpenBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, url)
		}
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
