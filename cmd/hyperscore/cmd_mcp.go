package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hyperscore/internal/mcp"
	"github.com/nvandessel/hyperscore/internal/metrics"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run hyperscore as an MCP server over stdio",
		Long: `Run an MCP (Model Context Protocol) server on stdin/stdout.

Tools:
  hyperscore_simulate  Run a scenario and return final scores
  hyperscore_graph     Render a scenario network as DOT or JSON
  hyperscore_results   List stored runs

Resources:
  hyperscore://scenarios/sandwich-panel  Built-in scenario definition

Configure your client with:
  {"command": "hyperscore", "args": ["mcp-server", "--root", "/path/to/project"]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			reg := metrics.NewRegistry()
			if metricsAddr != "" {
				stop, err := serveMetrics(metricsAddr, reg)
				if err != nil {
					return err
				}
				defer stop()
				a.logger.Info("metrics endpoint listening", "addr", metricsAddr)
			}

			srv, err := mcp.NewServer(&mcp.Config{
				Name:     "hyperscore",
				Version:  version,
				Root:     a.root,
				Settings: a.settings,
				Logger:   a.logger,
				Metrics:  reg,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer srv.Close()

			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. localhost:9464)")
	return cmd
}

// serveMetrics exposes reg at /metrics in the background. The returned
// function shuts the listener down.
func serveMetrics(addr string, reg *metrics.Registry) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return nil, fmt.Errorf("metrics server: %w", err)
	case <-time.After(50 * time.Millisecond):
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
