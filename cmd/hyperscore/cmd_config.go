package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/hyperscore/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect hyperscore configuration",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after the config file and HYPERSCORE_*
environment variables have been applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			cfgPath, _ := cmd.Flags().GetString("config")
			level, _ := cmd.Flags().GetString("log-level")

			settings, err := config.LoadWithPath(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if level != "" {
				settings.Logging.Level = level
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), settings)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(settings); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the default config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if path == "" {
				return fmt.Errorf("cannot determine home directory")
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
