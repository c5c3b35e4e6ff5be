package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hyperscore/internal/models"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List registered model function paths",
		Long: `List the function paths that scenario nodes may reference.
A node whose function path is not listed here keeps its input scores.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			ids := models.DefaultRegistry().IDs()

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"models": ids, "count": len(ids)})
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
